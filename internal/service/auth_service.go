package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"mfa-service/internal/domain"
	"mfa-service/internal/notifier"
	"mfa-service/internal/repository"
)

var (
	// ErrMissingCredentials indicates email or password was not supplied.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrUserAlreadyExists is returned when registering an email that is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no record matches the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCode covers both a wrong code and an expired one; the two
	// causes are deliberately not distinguished to the caller.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrInvalidCredentials indicates the supplied password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService coordinates registration, code issuance, code verification and
// password login. It holds no state of its own between calls; every call
// crosses the repository boundary.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	IssueCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

type authService struct {
	users         repository.UserRepository
	notifier      notifier.Notifier
	codeTTL       time.Duration
	notifyTimeout time.Duration
	logger        *logrus.Logger
}

func NewAuthService(users repository.UserRepository, n notifier.Notifier, codeTTL, notifyTimeout time.Duration, logger *logrus.Logger) AuthService {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &authService{
		users:         users,
		notifier:      n,
		codeTTL:       codeTTL,
		notifyTimeout: notifyTimeout,
		logger:        logger,
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *authService) IssueCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, expiresAt, err := GenerateCode(s.codeTTL)
	if err != nil {
		return err
	}

	if err := s.users.UpdateCodeFields(ctx, email, code, expiresAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Delivery is best-effort: a relay failure must not fail the issuance.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.SendCode(notifyCtx, email, code); err != nil {
		s.logger.WithField("email", email).Warnf("send verification code: %v", err)
	}

	return nil
}

func (s *authService) VerifyCode(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !user.HasPendingCode() {
		return ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if !time.Now().Before(*user.CodeExpiresAt) {
		return ErrInvalidCode
	}

	// The code stays pending after a successful match; it remains usable
	// until its expiry and is only ever replaced by a later issuance.
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
