package update

import (
	"github.com/majorcontext/modsync/internal/deps"
	"github.com/majorcontext/modsync/internal/version"
)

// PlatformChange describes what happened to the platform version.
type PlatformChange struct {
	Key     string           `json:"key"`
	From    version.Platform `json:"from"`
	To      version.Platform `json:"to"`
	Checked bool             `json:"checked"`
}

// Moved reports whether the platform version was raised.
func (p PlatformChange) Moved() bool { return p.To.Compare(p.From) > 0 }

// PropertyChange is one evaluated property. Old equals New when the value
// did not change.
type PropertyChange struct {
	Name        string `json:"name"`
	Old         string `json:"old"`
	New         string `json:"new"`
	Coordinates string `json:"coordinates,omitempty"`
}

// Changed reports whether the value differs.
func (c PropertyChange) Changed() bool { return c.Old != c.New }

// Outcome is the result of resolving one declaration. Exactly one of
// Resolution and Err is set.
type Outcome struct {
	Index       int               `json:"index"`
	Declaration *deps.Declaration `json:"-"`
	Resolution  *deps.Resolution  `json:"-"`
	Err         error             `json:"-"`
}

// Skipped records a declaration left unresolved.
type Skipped struct {
	Index       int    `json:"index"`
	Coordinates string `json:"coordinates"`
	Error       string `json:"error"`
}

// Report summarizes an update run.
type Report struct {
	RunID    string           `json:"run_id"`
	Platform PlatformChange   `json:"platform"`
	Changes  []PropertyChange `json:"changes"`
	// Updated counts changed dependency properties out of Total evaluated.
	Updated int `json:"updated"`
	Total   int `json:"total"`
	// Skipped lists declarations that failed under the tolerable policy.
	Skipped []Skipped `json:"skipped,omitempty"`
	// Written is set when the properties file was saved.
	Written bool `json:"written"`
}

// AnyUpdate reports whether the run changed any property, the platform
// version included.
func (r *Report) AnyUpdate() bool {
	return r.Updated > 0 || r.Platform.Moved()
}
