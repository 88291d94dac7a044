// Package service holds the session controller: login, refresh and logout
// flows built on the token pair and the revocation store. No HTTP vocabulary
// lives here, handlers translate the sentinel errors at the boundary.
package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/brewhollow/shop-backend/internal/hash"
	"github.com/brewhollow/shop-backend/internal/logging"
	"github.com/brewhollow/shop-backend/internal/models"
	"github.com/brewhollow/shop-backend/internal/square"
	"github.com/brewhollow/shop-backend/internal/tokens"
	"github.com/brewhollow/shop-backend/internal/tokenstore"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPasswordIncorrect = errors.New("password incorrect")
	ErrEmailInUse        = errors.New("email already in use")
)

type AuthService struct {
	DB     *gorm.DB
	Store  *tokenstore.Store
	Square *square.Client

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Register creates a new account with the customer role. The provider
// customer reference is best effort: a failure there never fails the
// registration itself.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailInUse
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
		RegisteredOn: time.Now(),
	}

	if s.Square != nil {
		if id, err := s.Square.EnsureCustomer(ctx, email, firstName, lastName); err != nil {
			l.Warn("square_customer_failed", "error", err)
		} else {
			user.SquareCustomerID = id
		}
	}

	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates the credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrPasswordIncorrect
	}

	pair, err := s.IssueSession(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// IssueSession mints an access/refresh pair for the identity and registers
// both jtis unrevoked in the store.
func (s *AuthService) IssueSession(ctx context.Context, email string) (*TokenPair, error) {
	access, err := s.IssueAccess(ctx, email)
	if err != nil {
		return nil, err
	}

	refresh, refreshClaims, err := tokens.Sign(email, tokens.TypeRefresh, s.RefreshTTL, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Add(ctx, refreshClaims); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess mints a single new access token and registers it. The refresh
// flow re-uses this: the presented refresh token stays valid as is.
func (s *AuthService) IssueAccess(ctx context.Context, email string) (string, error) {
	access, claims, err := tokens.Sign(email, tokens.TypeAccess, s.AccessTTL, s.AccessSecret)
	if err != nil {
		return "", err
	}
	if err := s.Store.Add(ctx, claims); err != nil {
		return "", err
	}
	return access, nil
}

// Revoke marks the given jti revoked in the store.
func (s *AuthService) Revoke(ctx context.Context, jti string) error {
	return s.Store.Revoke(ctx, jti)
}

func (s *AuthService) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
