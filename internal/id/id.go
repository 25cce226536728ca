// Package id generates identifiers for modsync update runs.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Generate creates a unique identifier with the given prefix.
// Format: <prefix>_<12 hex chars> (e.g., "run_0a1b2c3d4e5f").
func Generate(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		ns := strconv.FormatInt(time.Now().UnixNano(), 16)
		return prefix + "_" + leftPad(ns[max(0, len(ns)-12):], 12)
	}
	return prefix + "_" + hex.EncodeToString(b)
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}
