// Package doctor collects the diagnostic sections printed by modsync doctor.
package doctor

import (
	"context"
	"io"
)

// Section is one block of diagnostic output.
type Section interface {
	// Name returns the section heading (e.g. "Configuration").
	Name() string

	// Print writes the section's diagnostics to w. An error means the
	// section could not be produced, not that a check failed.
	Print(ctx context.Context, w io.Writer) error
}

// Registry holds sections in registration order.
type Registry struct {
	sections []Section
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a section.
func (r *Registry) Register(s Section) {
	r.sections = append(r.sections, s)
}

// Sections returns all registered sections.
func (r *Registry) Sections() []Section {
	return r.sections
}

// Run prints every section, calling heading before each. It returns the
// names of the sections whose Print failed; the failure is written to w
// and the remaining sections still run.
func (r *Registry) Run(ctx context.Context, w io.Writer, heading func(name string)) []string {
	var failed []string
	for _, s := range r.sections {
		if heading != nil {
			heading(s.Name())
		}
		if err := s.Print(ctx, w); err != nil {
			io.WriteString(w, "Error: "+err.Error()+"\n")
			failed = append(failed, s.Name())
		}
		io.WriteString(w, "\n")
	}
	return failed
}
