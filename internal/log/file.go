package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// FileWriter appends to one JSONL file per day, dir/YYYY-MM-DD.jsonl, and
// keeps dir/latest pointing at the current one.
type FileWriter struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	file *os.File
	day  string
}

// NewFileWriter creates dir if needed and opens today's file.
func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating debug log dir: %w", err)
	}
	fw := &FileWriter{dir: dir, now: time.Now}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if err := fw.openLocked(fw.now().Format(dayLayout)); err != nil {
		return nil, err
	}
	return fw, nil
}

// Write implements io.Writer, switching files when the day changes.
func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if day := fw.now().Format(dayLayout); day != fw.day || fw.file == nil {
		if err := fw.openLocked(day); err != nil {
			return 0, err
		}
	}
	return fw.file.Write(p)
}

// Close closes the current file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.file == nil {
		return nil
	}
	err := fw.file.Close()
	fw.file = nil
	return err
}

func (fw *FileWriter) openLocked(day string) error {
	if fw.file != nil {
		fw.file.Close()
		fw.file = nil
	}

	name := day + ".jsonl"
	f, err := os.OpenFile(filepath.Join(fw.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	fw.file = f
	fw.day = day
	fw.link(name)
	return nil
}

// link repoints dir/latest at name. Failures are ignored.
func (fw *FileWriter) link(name string) {
	latest := filepath.Join(fw.dir, "latest")
	tmp := latest + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(name, tmp); err != nil {
		return
	}
	_ = os.Rename(tmp, latest)
}

// Cleanup removes daily log files older than retentionDays and reports how
// many were removed. Other files in dir are left alone.
func Cleanup(dir string, retentionDays int) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		day, err := time.Parse(dayLayout, strings.TrimSuffix(name, ".jsonl"))
		if err != nil {
			continue
		}
		if day.Before(cutoff) && os.Remove(filepath.Join(dir, name)) == nil {
			removed++
		}
	}
	return removed
}
