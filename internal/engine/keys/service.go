package keys

import (
	"errors"

	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

const maxGenerationAttempts = 5

// ErrGenerationExhausted means every generation attempt collided on the
// (prefix, hash) uniqueness constraint. With 32 bytes of entropy per
// attempt this indicates something is badly wrong, so it surfaces as an
// internal error rather than being retried further.
var ErrGenerationExhausted = errors.New("api key generation exhausted retries")

// Store is the slice of persistence the issuer needs. Both methods
// return repositories.ErrDuplicate on a uniqueness collision.
type Store interface {
	Create(key *models.APIKey) error
	UpdateSecret(id, prefix, hash string) error
	SetStatus(id, status string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Issue creates a credential for the organization and returns it with
// the raw secret. The secret is shown exactly once; only its digest is
// persisted. Each collision gets an independent generate-and-insert
// attempt, no lock held in between.
func (s *Service) Issue(orgID, name, env string, scopes []string) (*models.APIKey, string, error) {
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		secret, prefix, digest, err := Generate()
		if err != nil {
			return nil, "", err
		}

		key := &models.APIKey{
			OrganizationID: orgID,
			Name:           name,
			Env:            env,
			Scopes:         scopes,
			KeyPrefix:      prefix,
			KeyHash:        digest,
			Status:         models.KeyStatusActive,
		}

		err = s.store.Create(key)
		if errors.Is(err, repositories.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return key, secret, nil
	}
	return nil, "", ErrGenerationExhausted
}

// Rotate replaces the key's secret, invalidating the previous one
// immediately. The store update is a single statement, so there is no
// window where both secrets validate.
func (s *Service) Rotate(id string) (string, error) {
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		secret, prefix, digest, err := Generate()
		if err != nil {
			return "", err
		}

		err = s.store.UpdateSecret(id, prefix, digest)
		if errors.Is(err, repositories.ErrDuplicate) {
			continue
		}
		if err != nil {
			return "", err
		}
		return secret, nil
	}
	return "", ErrGenerationExhausted
}

// Revoke transitions the key to revoked. One-way: nothing in this
// service ever sets a key back to active.
func (s *Service) Revoke(id string) error {
	return s.store.SetStatus(id, models.KeyStatusRevoked)
}
