package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"hash402/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, name, plan, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Name, &org.Plan, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`
		INSERT INTO organizations (id, name, plan, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Plan, org.CreatedAt, org.UpdatedAt)
	return translateErr(err)
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateTx(tx *sql.Tx, user *models.User) error {
	// Empty identifiers are stored as NULL so the UNIQUE constraints on
	// email and wallet_address only bind rows that actually carry one.
	_, err := tx.Exec(`
		INSERT INTO users (id, organization_id, email, wallet_address, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.OrganizationID, nullable(user.Email), nullable(user.WalletAddress), nullable(user.PasswordHash), user.CreatedAt, user.UpdatedAt)
	return translateErr(err)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.getOne(`WHERE u.id = ?`, id)
}

func (r *UserRepository) GetByWallet(address string) (*models.User, error) {
	return r.getOne(`WHERE u.wallet_address = ?`, address)
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`WHERE u.email = ?`, email)
}

func (r *UserRepository) getOne(where string, arg interface{}) (*models.User, error) {
	user := &models.User{Organization: &models.Organization{}}
	var email, walletAddress, passwordHash sql.NullString
	var lastLoginAt sql.NullInt64

	err := r.db.QueryRow(`
		SELECT u.id, u.organization_id, u.email, u.wallet_address, u.password_hash,
		       u.last_login_at, u.created_at, u.updated_at,
		       o.id, o.name, o.plan, o.created_at, o.updated_at
		FROM users u
		JOIN organizations o ON o.id = u.organization_id
	`+where, arg).Scan(
		&user.ID, &user.OrganizationID, &email, &walletAddress, &passwordHash,
		&lastLoginAt, &user.CreatedAt, &user.UpdatedAt,
		&user.Organization.ID, &user.Organization.Name, &user.Organization.Plan,
		&user.Organization.CreatedAt, &user.Organization.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.Email = email.String
	user.WalletAddress = walletAddress.String
	user.PasswordHash = passwordHash.String
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Int64
	}
	return user, nil
}

func (r *UserRepository) UpdateLastLogin(userID string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, timestamp, userID)
	return err
}

// AccountRepository provisions a wallet's organization and user as one
// unit. The users.wallet_address UNIQUE constraint decides the winner
// between concurrent first-time logins; the loser gets ErrDuplicate and
// is expected to re-fetch.
type AccountRepository struct {
	db       *sql.DB
	orgRepo  *OrganizationRepository
	userRepo *UserRepository
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{
		db:       db,
		orgRepo:  NewOrganizationRepository(db),
		userRepo: NewUserRepository(db),
	}
}

func (r *AccountRepository) CreateOrganizationAndUser(walletAddress, orgName string) (*models.User, error) {
	now := time.Now().Unix()

	org := &models.Organization{
		ID:        "org_" + uuid.NewString(),
		Name:      orgName,
		Plan:      "free",
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &models.User{
		ID:             "usr_" + uuid.NewString(),
		OrganizationID: org.ID,
		WalletAddress:  walletAddress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.orgRepo.CreateTx(tx, org); err != nil {
		return nil, err
	}
	if err := r.userRepo.CreateTx(tx, user); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, translateErr(err)
	}

	user.Organization = org
	return user, nil
}
