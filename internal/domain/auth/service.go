package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnknownEmail        = errors.New("email not found")
	ErrAlreadyActivated    = errors.New("account already activated")
	ErrNotActivated        = errors.New("account not activated")
	ErrInactiveAccount     = errors.New("account is inactive")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters")
	errMissingPasswordHash = errors.New("account has no password hash")
)

const tokenTTL = 24 * time.Hour

type Service struct {
	store  *Store
	secret string
}

func NewService(store *Store, secret string) *Service {
	return &Service{store: store, secret: secret}
}

// Signup activates an account previously invited by HR. The user row must
// already exist; signup only sets the password.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	acct, err := s.store.AccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct.PasswordSet {
		return ErrAlreadyActivated
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.Activate(ctx, email, hash)
}

type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type Profile struct {
	UserID       int64  `json:"userId"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"departmentId"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	acct, err := s.store.AccountByEmail(ctx, email)
	if errors.Is(err, ErrUnknownEmail) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if !acct.PasswordSet {
		return LoginResult{}, ErrNotActivated
	}
	if acct.AccountStatus != "Active" {
		return LoginResult{}, ErrInactiveAccount
	}
	if acct.PasswordHash == nil {
		return LoginResult{}, errMissingPasswordHash
	}
	if err := CheckPassword(*acct.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{UserID: acct.ID, Role: acct.Role, Email: acct.Email}, tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token: token,
		User: Profile{
			UserID:       acct.ID,
			FullName:     acct.FullName,
			Email:        acct.Email,
			Role:         acct.Role,
			DepartmentID: acct.DepartmentID,
		},
	}, nil
}

func (s *Service) Verify(tokenString string) (*Claims, error) {
	return ParseToken(s.secret, tokenString)
}
