package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zalando/go-keyring"
)

// ServiceName is the default keyring service identifier.
// Can be overridden with MODSYNC_KEYRING_SERVICE environment variable for test isolation.
const ServiceName = "modsync"

func serviceName() string {
	if name := os.Getenv("MODSYNC_KEYRING_SERVICE"); name != "" {
		return name
	}
	return ServiceName
}

// KeyringStore implements Store on the system keychain. Each repository is
// one keychain entry holding the JSON-encoded credential.
type KeyringStore struct{}

// NewKeyringStore returns a store backed by the system keychain.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

// Save stores cred under its normalized repository URL.
func (s *KeyringStore) Save(cred Credential) error {
	cred.Repository = NormalizeRepository(cred.Repository)
	if cred.Repository == "" {
		return fmt.Errorf("credential has no repository")
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshaling credential: %w", err)
	}
	if err := keyring.Set(serviceName(), cred.Repository, string(data)); err != nil {
		return fmt.Errorf("keychain set: %w", err)
	}
	return nil
}

// Get retrieves the credential for repository.
func (s *KeyringStore) Get(repository string) (*Credential, error) {
	repository = NormalizeRepository(repository)
	data, err := keyring.Get(serviceName(), repository)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, repository)
		}
		return nil, fmt.Errorf("keychain get: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, fmt.Errorf("unmarshaling credential for %s: %w", repository, err)
	}
	return &cred, nil
}

// Delete removes the credential for repository. Deleting an absent
// credential returns ErrNotFound.
func (s *KeyringStore) Delete(repository string) error {
	repository = NormalizeRepository(repository)
	if err := keyring.Delete(serviceName(), repository); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, repository)
		}
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}
