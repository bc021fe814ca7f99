package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/asadamin236/login-system-backend/internal/domain"
	"github.com/asadamin236/login-system-backend/internal/repository"
	"github.com/asadamin236/login-system-backend/internal/security"
	"github.com/asadamin236/login-system-backend/internal/token"
)

const (
	minPasswordLen = 6
	maxUsernameLen = 50
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthResult is the payload returned by Register and Login.
type AuthResult struct {
	UserID   int64
	Username string
	Email    string
	Token    string
}

// ProfileUpdate names the fields a user may change. Nil means unchanged;
// Password arrives in plaintext and is hashed before it reaches storage.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// AuthService orchestrates credential verification, token issuance and user
// persistence for the register/login/profile operations.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID int64) (*domain.PublicUser, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.PublicUser, error)
	ListUsers(ctx context.Context) ([]domain.PublicUser, error)
}

type authService struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	tokens *token.Issuer
	logger logrus.FieldLogger
}

func NewAuthService(users repository.UserRepository, hasher security.PasswordHasher, tokens *token.Issuer, logger logrus.FieldLogger) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(username) > maxUsernameLen {
		return nil, ErrInvalidUsername
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.storageError("register: find by email", err)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.storageError("register: find by username", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.storageError("register: hash password", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	userID, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost the race between the existence checks and the insert;
			// the unique constraint is the final authority.
			return nil, s.classifyDuplicate(ctx, email)
		}
		return nil, s.storageError("register: insert user", err)
	}

	signed, err := s.tokens.Issue(userID, email)
	if err != nil {
		return nil, s.storageError("register: issue token", err)
	}

	return &AuthResult{
		UserID:   userID,
		Username: username,
		Email:    email,
		Token:    signed,
	}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, s.storageError("login: find by email", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, s.storageError("login: issue token", err)
	}

	return &AuthResult{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    signed,
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID int64) (*domain.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storageError("get profile: find by id", err)
	}
	view := user.PublicView()
	return &view, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.PublicUser, error) {
	if update.Username == nil && update.Email == nil && update.Password == nil {
		return nil, ErrMissingFields
	}

	fields := domain.UserUpdate{}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if !emailPattern.MatchString(email) {
			return nil, ErrInvalidEmail
		}
		if existing, err := s.users.FindByEmail(ctx, email); err == nil {
			if existing.ID != userID {
				return nil, ErrEmailTaken
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, s.storageError("update profile: find by email", err)
		}
		fields.Email = &email
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" || len(username) > maxUsernameLen {
			return nil, ErrInvalidUsername
		}
		if existing, err := s.users.FindByUsername(ctx, username); err == nil {
			if existing.ID != userID {
				return nil, ErrUsernameTaken
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, s.storageError("update profile: find by username", err)
		}
		fields.Username = &username
	}

	if update.Password != nil {
		if len(*update.Password) < minPasswordLen {
			return nil, ErrWeakPassword
		}
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, s.storageError("update profile: hash password", err)
		}
		fields.PasswordHash = &hash
	}

	updated, err := s.users.UpdateByID(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			if fields.Email != nil {
				if existing, ferr := s.users.FindByEmail(ctx, *fields.Email); ferr == nil && existing.ID != userID {
					return nil, ErrEmailTaken
				}
			}
			return nil, ErrUsernameTaken
		}
		return nil, s.storageError("update profile: update user", err)
	}
	if !updated {
		return nil, ErrUserNotFound
	}

	return s.GetProfile(ctx, userID)
}

func (s *authService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, s.storageError("list users", err)
	}

	views := make([]domain.PublicUser, len(users))
	for i := range users {
		views[i] = users[i].PublicView()
	}
	return views, nil
}

// classifyDuplicate decides which uniqueness constraint a DuplicateKey hit:
// if the email now exists it was the email, otherwise the username.
func (s *authService) classifyDuplicate(ctx context.Context, email string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// storageError logs the underlying failure with detail and returns the
// generic kind exposed to callers.
func (s *authService) storageError(op string, err error) error {
	s.logger.WithError(err).Errorf("storage failure: %s", op)
	return ErrStorageUnavailable
}
