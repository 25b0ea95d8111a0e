package service

import (
	"context"
	"errors"
	"time"

	"github.com/keiworks/authd/internal/events"
	"github.com/keiworks/authd/internal/hash"
	"github.com/keiworks/authd/internal/logging"
	"github.com/keiworks/authd/internal/models"
	"github.com/keiworks/authd/internal/repo"
	"github.com/keiworks/authd/internal/tokens"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Options carry the slice of process configuration the service needs. They
// are fixed at construction and never mutated afterwards.
type Options struct {
	Secret      []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	DefaultRole string
}

type AuthService struct {
	repo     *repo.Repo
	hasher   *hash.Hasher
	producer *events.Producer
	opts     Options

	// decoyHash is verified against when the username is unknown, so the
	// failure path costs about as much as a real mismatch.
	decoyHash string
}

func NewAuthService(r *repo.Repo, hasher *hash.Hasher, producer *events.Producer, opts Options) (*AuthService, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth service requires a signing secret")
	}
	if opts.AccessTTL <= 0 || opts.RefreshTTL <= 0 {
		return nil, errors.New("auth service requires positive token TTLs")
	}
	if opts.DefaultRole == "" {
		return nil, errors.New("auth service requires a default role name")
	}

	decoy, err := hasher.Hash("authd-decoy-credential")
	if err != nil {
		return nil, err
	}

	return &AuthService{
		repo:      r,
		hasher:    hasher,
		producer:  producer,
		opts:      opts,
		decoyHash: decoy,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			s.hasher.Check(s.decoyHash, password)
			l.Warn("login_failed", "reason", "bad_credentials")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "reason", "store_error", "error", err)
		return nil, err
	}

	if !s.hasher.Check(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "bad_credentials")
		return nil, ErrInvalidCredentials
	}

	pair, refreshExp, err := s.issuePair(user.ID, user.Username, user.Role.Name)
	if err != nil {
		l.Error("login_failed", "reason", "token_error", "error", err)
		return nil, err
	}

	if err := s.repo.CreateRefreshToken(ctx, pair.RefreshToken, refreshExp); err != nil {
		l.Error("login_failed", "reason", "refresh_store_error", "error", err)
		return nil, err
	}

	s.emit(ctx, events.AuthEvent{Type: events.TypeUserLoggedIn, UserID: user.ID, Username: user.Username})
	l.Info("login_successful", "user_id", user.ID)

	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			l.Error("logout_failed", "reason", "token_not_found")
			return ErrTokenNotFound
		}
		l.Error("logout_failed", "reason", "store_error", "error", err)
		return err
	}

	s.emit(ctx, events.AuthEvent{Type: events.TypeUserLoggedOut})
	l.Info("logout_successful")

	return nil
}

// Refresh exchanges a live refresh token for a fresh access token. The store
// lookup comes first: a validly signed token the store no longer knows is
// rejected. The refresh token itself is neither rotated nor re-persisted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if _, err := s.repo.FindLiveRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			l.Warn("refresh_failed", "reason", "unknown_token")
			return "", ErrRefreshInvalid
		}
		l.Error("refresh_failed", "reason", "store_error", "error", err)
		return "", err
	}

	claims, err := tokens.Parse(refreshToken, s.opts.Secret)
	if err != nil {
		l.Warn("refresh_failed", "reason", "invalid_token")
		return "", ErrRefreshInvalid
	}

	// The new access token is minted from the recovered claims, not from a
	// fresh user lookup.
	access, err := tokens.Issue(tokens.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, s.opts.AccessTTL, s.opts.Secret)
	if err != nil {
		l.Error("refresh_failed", "reason", "token_error", "error", err)
		return "", err
	}

	l.Info("refresh_successful", "user_id", claims.UserID)

	return access, nil
}

// Register creates a user under the configured default role and logs it in.
// Input shape (length bounds, password confirmation) is the validator's job;
// by the time Register runs the payload is assumed well formed.
func (s *AuthService) Register(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	count, err := s.repo.CountUsersByUsername(ctx, username)
	if err != nil {
		l.Error("register_failed", "reason", "store_error", "error", err)
		return nil, err
	}
	if count > 0 {
		l.Warn("register_failed", "reason", "username_taken")
		return nil, ErrUsernameTaken
	}

	role, err := s.repo.FindRoleByName(ctx, s.opts.DefaultRole)
	if err != nil {
		if errors.Is(err, repo.ErrRoleNotFound) {
			l.Error("register_failed", "reason", "role_not_seeded", "role", s.opts.DefaultRole)
			return nil, ErrRoleNotSeeded
		}
		l.Error("register_failed", "reason", "store_error", "error", err)
		return nil, err
	}

	pwHash, err := s.hasher.Hash(password)
	if err != nil {
		l.Error("register_failed", "reason", "hash_error", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		RoleID:       role.ID,
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		l.Error("register_failed", "reason", "store_error", "error", err)
		return nil, err
	}

	pair, refreshExp, err := s.issuePair(user.ID, user.Username, role.Name)
	if err != nil {
		l.Error("register_failed", "reason", "token_error", "error", err)
		return nil, err
	}

	// Registration opens a session like login does, so its refresh token is
	// persisted the same way.
	if err := s.repo.CreateRefreshToken(ctx, pair.RefreshToken, refreshExp); err != nil {
		l.Error("register_failed", "reason", "refresh_store_error", "error", err)
		return nil, err
	}

	s.emit(ctx, events.AuthEvent{Type: events.TypeUserRegistered, UserID: user.ID, Username: user.Username})
	l.Info("register_successful", "user_id", user.ID)

	return pair, nil
}

func (s *AuthService) issuePair(userID uint, username, roleName string) (*TokenPair, time.Time, error) {
	claims := tokens.Claims{UserID: userID, Username: username, Role: roleName}

	access, err := tokens.Issue(claims, s.opts.AccessTTL, s.opts.Secret)
	if err != nil {
		return nil, time.Time{}, err
	}

	refreshExp := time.Now().Add(s.opts.RefreshTTL)
	refresh, err := tokens.Issue(claims, s.opts.RefreshTTL, s.opts.Secret)
	if err != nil {
		return nil, time.Time{}, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, refreshExp, nil
}

// emit is best effort: a broker hiccup never fails the auth operation.
func (s *AuthService) emit(ctx context.Context, event events.AuthEvent) {
	if err := s.producer.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("auth_event_publish_failed", "type", event.Type, "error", err)
	}
}
