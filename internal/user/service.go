package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/mberrie/todoapp-service/internal/user/entity"
)

// PasswordHasher is the one-way hashing scheme for stored credentials.
// Abstracted so the scheme can move to argon2 without touching callers.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation. bcrypt salts every hash randomly and compares
// in constant time.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store is the persistence surface the service needs. *repo.UserRepo
// satisfies it; tests provide an in-memory fake.
type Store interface {
	Create(ctx context.Context, u *entity.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdatePhoneNumber(ctx context.Context, id int64, phone string) error
}

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrDisabled       = errors.New("user disabled")
	ErrNotFound       = errors.New("user not found")
	ErrConflict       = errors.New("username or email already taken")
	ErrInvalid        = errors.New("invalid user data")
)

// Service orchestrates credential verification and the account lifecycle.
type Service struct {
	store  Store
	hasher PasswordHasher
}

func NewService(store Store, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &Service{store: store, hasher: hasher}
}

// Authenticate verifies a username/password pair. Unknown username and
// wrong password both come back as ErrBadCredentials so the login flow
// cannot be used to enumerate accounts; the log-only ErrDisabled is
// surfaced identically by callers.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrDisabled
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// Register creates an account from the supplied fields, hashing the
// plaintext password. A duplicate username or email maps to ErrConflict.
func (s *Service) Register(ctx context.Context, u *entity.User, password string) (int64, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Username == "" || u.Email == "" || password == "" {
		return 0, ErrInvalid
	}
	if u.Role == "" {
		u.Role = "user"
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	u.PasswordHash = hash
	u.IsActive = true

	id, err := s.store.Create(ctx, u)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	return id, nil
}

// Profile returns the account for an authenticated identity.
func (s *Service) Profile(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if next == "" {
		return ErrInvalid
	}
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !s.hasher.Verify(u.PasswordHash, current) {
		return ErrBadCredentials
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

// ChangePhoneNumber updates the phone number on the caller's account.
func (s *Service) ChangePhoneNumber(ctx context.Context, id int64, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrInvalid
	}
	if _, err := s.store.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return s.store.UpdatePhoneNumber(ctx, id, phone)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
