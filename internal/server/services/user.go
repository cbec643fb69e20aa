// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/dbx"
	"github.com/dmitrijs2005/postbox/internal/server/auth"
	"github.com/dmitrijs2005/postbox/internal/server/config"
	"github.com/dmitrijs2005/postbox/internal/server/models"
	"github.com/dmitrijs2005/postbox/internal/server/repositories/repomanager"
)

const (
	MaxUserNameLength = 150

	msgUserNameInvalid  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUserNameTooLong  = "Ensure this field has no more than 150 characters."
	msgUserNameTaken    = "A user with that username already exists."
	msgPasswordMismatch = "Password fields didn't match."
)

var userNamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint tokens
// - RefreshToken: spend a refresh token and mint a new pair
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register validates the credentials, stores a bcrypt hash of password and
// returns the new user. Rejected input comes back as *common.ValidationError.
func (s *UserService) Register(ctx context.Context, userName, password, password2 string) (*models.User, error) {
	verr := common.NewValidationError()

	switch {
	case utf8.RuneCountInString(userName) > MaxUserNameLength:
		verr.Add("username", msgUserNameTooLong)
	case !userNamePattern.MatchString(userName):
		verr.Add("username", msgUserNameInvalid)
	}

	if password != password2 {
		verr.Add("password", msgPasswordMismatch)
	} else {
		for _, msg := range auth.ValidatePassword(password, userName) {
			verr.Add("password", msg)
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.Create(ctx, &models.User{UserName: userName, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.FieldError("username", msgUserNameTaken)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login checks password against the stored hash and, on success, drops the
// user's expired refresh tokens and returns a new TokenPair. Unknown users
// and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	if _, err := s.repomanager.RefreshTokens(s.db).PurgeExpired(ctx, user.UserName, time.Now()); err != nil {
		return nil, common.ErrorInternal
	}

	return s.generateTokenPair(ctx, user.UserName, s.db)
}

// RefreshToken spends a refresh token and returns a fresh TokenPair. The
// token is consumed inside the same transaction that issues its successor,
// so of two requests carrying the same token only one succeeds. Expired
// tokens are consumed too and yield ErrRefreshTokenExpired; unknown or
// already spent ones yield ErrorUnauthorized.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		expired bool
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}

		// a stale token is still spent, so the deletion commits
		if !token.Expires.After(time.Now()) {
			expired = true
			return nil
		}

		pair, err = s.generateTokenPair(ctx, token.UserName, tx)
		if err != nil {
			return fmt.Errorf("error generating token pair: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}

	return pair, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userName string, db dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if _, err := s.repomanager.RefreshTokens(db).Issue(ctx, userName, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
