// Package credential stores login credentials for private Maven
// repositories.
package credential

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no credential is stored for a repository.
var ErrNotFound = errors.New("credential not found")

// Credential is a username/password pair for HTTP basic auth.
type Credential struct {
	Repository string    `json:"repository"`
	Username   string    `json:"username"`
	Password   string    `json:"password"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store defines the credential storage interface.
type Store interface {
	Save(cred Credential) error
	Get(repository string) (*Credential, error)
	Delete(repository string) error
}

// NormalizeRepository returns the key a repository URL is stored under.
// "https://maven.example.com/releases/" and "https://maven.example.com/releases"
// share a credential.
func NormalizeRepository(repository string) string {
	return strings.TrimRight(strings.TrimSpace(repository), "/")
}
