package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"recell-store/internal/config"
	"recell-store/internal/model"
	"recell-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// loginLimiter tracks failed login attempts per email within a sliding
// window. State is process-local; a restart clears it, which is acceptable
// for a throttle.
type loginLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	max      int
	window   time.Duration
}

func newLoginLimiter(max int, window time.Duration) *loginLimiter {
	return &loginLimiter{
		failures: make(map[string][]time.Time),
		max:      max,
		window:   window,
	}
}

// blocked reports whether the email has exhausted its attempts.
func (l *loginLimiter) blocked(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.window)
	recent := l.failures[email][:0]
	for _, t := range l.failures[email] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) == 0 {
		delete(l.failures, email)
	} else {
		l.failures[email] = recent
	}
	return len(recent) >= l.max
}

func (l *loginLimiter) recordFailure(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[email] = append(l.failures[email], time.Now())
}

func (l *loginLimiter) reset(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, email)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cfg         config.AuthConfig
	google      GoogleVerifier
	limiter     *loginLimiter
	logger      zerolog.Logger
}

// NewAuthService creates a new auth service. google may be nil when
// federated sign-in is disabled.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	cfg config.AuthConfig,
	google GoogleVerifier,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
		google:      google,
		limiter:     newLoginLimiter(cfg.MaxLoginRetries, cfg.RetryWindow),
		logger:      logger.With().Str("service", "auth").Logger(),
	}
}

// Signup registers an email/password account and opens a session.
func (s *authService) Signup(ctx context.Context, email, password, name string) (*model.User, string, error) {
	email = normaliseEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", model.NewDomainError(model.ErrCodeValidation, "A valid email address is required.")
	}
	if len(password) < minPasswordLength {
		return nil, "", model.ErrWeakPassword
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, "", model.ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         s.roleFor(email),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user signed up")

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates an email/password account and opens a session.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normaliseEmail(email)

	if s.limiter.blocked(email) {
		s.logger.Warn().Str("email", email).Msg("login blocked after repeated failures")
		return nil, "", model.ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		s.limiter.recordFailure(email)
		return nil, "", model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.limiter.recordFailure(email)
			return nil, "", model.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	s.limiter.reset(email)

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")

	return user, token, nil
}

// GoogleSignIn exchanges an OAuth authorization code for a federated
// identity, creating the account on first sign-in.
func (s *authService) GoogleSignIn(ctx context.Context, code string) (*model.User, string, error) {
	if s.google == nil {
		return nil, "", model.NewDomainError(model.ErrCodeValidation, "Google sign-in is not enabled.")
	}

	identity, err := s.google.Verify(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Msg("google code exchange failed")
		return nil, "", model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByGoogleID(ctx, identity.Subject)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		// Link to an existing email/password account when the address matches.
		user, err = s.userRepo.GetByEmail(ctx, normaliseEmail(identity.Email))
		if err != nil {
			return nil, "", fmt.Errorf("failed to get user: %w", err)
		}
	}

	if user == nil {
		user = &model.User{
			ID:        uuid.New(),
			Email:     normaliseEmail(identity.Email),
			GoogleID:  identity.Subject,
			Name:      identity.Name,
			AvatarURL: identity.Picture,
			Role:      s.roleFor(identity.Email),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info().Str("user_id", user.ID.String()).Msg("user created via google sign-in")
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout terminates the session identified by token.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ValidateSession resolves a session token to its user.
func (s *authService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.ErrUnauthorised
	}
	user, err := s.sessionRepo.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorised
	}
	return user, nil
}

// RequestPasswordReset issues a reset token when the email exists. It
// reports success either way so accounts cannot be enumerated.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normaliseEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		// Federated-only and unknown accounts get the same silence.
		s.logger.Debug().Str("email", email).Msg("password reset requested for non-resettable account")
		return nil
	}

	token, err := newToken()
	if err != nil {
		return err
	}
	reset := &model.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
	}
	if err := s.sessionRepo.CreateResetToken(ctx, reset); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	// Delivery is out of band; the token is only logged at debug level so
	// local setups without a mailer can complete the flow.
	s.logger.Info().Str("user_id", user.ID.String()).Msg("password reset token issued")
	s.logger.Debug().Str("reset_token", token).Msg("password reset token")

	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return model.ErrWeakPassword
	}

	reset, err := s.sessionRepo.GetResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if reset == nil || reset.Used || time.Now().After(reset.ExpiresAt) {
		return model.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.sessionRepo.MarkResetTokenUsed(ctx, token); err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	s.logger.Info().Str("user_id", reset.UserID.String()).Msg("password reset completed")

	return nil
}

// openSession creates a session with a fresh opaque token.
func (s *authService) openSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	session := &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// roleFor assigns the bootstrap role for a brand-new account. The email
// list only seeds the first admins; role changes afterwards live in the
// database.
func (s *authService) roleFor(email string) model.Role {
	email = normaliseEmail(email)
	for _, admin := range s.cfg.AdminEmails {
		if normaliseEmail(admin) == email {
			return model.RoleAdmin
		}
	}
	return model.RoleUser
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newToken returns 32 bytes of randomness, hex encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
