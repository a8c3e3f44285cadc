package session

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"hash402/internal/engine/keys"
	"hash402/internal/engine/wallet"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

var (
	// ErrInvalidSignature: the wallet signature did not verify. Returned
	// before any account lookup or provisioning happens.
	ErrInvalidSignature = errors.New("invalid wallet signature")

	// ErrInvalidCredentials covers unknown identifiers and wrong
	// passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserStore interface {
	GetByWallet(address string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdateLastLogin(userID string, timestamp int64) error
}

// AccountStore provisions an organization and user for a new wallet.
// Must be atomic or collision-tolerant: when two first-time logins
// race, exactly one creation wins and the other returns
// repositories.ErrDuplicate.
type AccountStore interface {
	CreateOrganizationAndUser(walletAddress, orgName string) (*models.User, error)
}

type Service struct {
	users    UserStore
	accounts AccountStore
	tokens   *auth.TokenService
}

func NewService(users UserStore, accounts AccountStore, tokens *auth.TokenService) *Service {
	return &Service{users: users, accounts: accounts, tokens: tokens}
}

// IssueFromWallet verifies the wallet signature over message, resolves
// or provisions the owning account, and mints a session token. First
// login provisions organization and user together; a provisioning
// collision with a concurrent login is a normal path handled by
// re-fetching the winner's row.
func (s *Service) IssueFromWallet(walletAddress, signature, message string) (string, *models.User, error) {
	if !wallet.Verify(walletAddress, signature, message) {
		return "", nil, ErrInvalidSignature
	}

	user, err := s.users.GetByWallet(walletAddress)
	if err != nil {
		return "", nil, err
	}

	if user == nil {
		orgName := wallet.ShortAddress(walletAddress) + " Org"
		user, err = s.accounts.CreateOrganizationAndUser(walletAddress, orgName)
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost the race to a concurrent first login.
			user, err = s.users.GetByWallet(walletAddress)
		}
		if err != nil {
			return "", nil, err
		}
		if user == nil {
			return "", nil, errors.New("account provisioning collided but no record found")
		}
	}

	token, err := s.tokens.GenerateSessionToken(user.ID, user.OrganizationID, walletAddress)
	if err != nil {
		return "", nil, err
	}

	s.touchLastLogin(user.ID)
	return token, user, nil
}

// IssueFromPassword is the email/password path. The stored digest and
// the candidate digest are both fixed-length sha256 hex, so a
// constant-time byte comparison suffices.
func (s *Service) IssueFromPassword(email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}

	digest := keys.Hash(password)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(user.PasswordHash)) != 1 {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateSessionToken(user.ID, user.OrganizationID, "")
	if err != nil {
		return "", nil, err
	}

	s.touchLastLogin(user.ID)
	return token, user, nil
}

// touchLastLogin is best effort: a failed write is logged, never
// surfaced to a caller that already holds a valid token.
func (s *Service) touchLastLogin(userID string) {
	if err := s.users.UpdateLastLogin(userID, time.Now().Unix()); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to update last login")
	}
}
