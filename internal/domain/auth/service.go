package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/tx"
	"planora/internal/domain/user"
	"planora/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour, // 7 days
	}
}

// Service provides authentication logic.
type Service struct {
	userRepo   user.Repository
	tokenRepo  TokenRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo user.Repository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Signup registers a new entrepreneur account.
// Collaborator and customer accounts are created by their entrepreneur
// through the user service, never through signup.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*user.User, error) {
	if req.Email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", req.Email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := user.NewUser(req.Name, req.Email, string(passwordHash), role.Entrepreneur)
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "entrepreneur registered",
		"user_id", u.ID,
		"email", u.Email)

	return u, nil
}

// Login authenticates a user and returns tokens.
// Unknown email and wrong password return the same error.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *user.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, nil, apperror.NewValidation("email and password are required")
	}

	u, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := u.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		u.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		_ = s.userRepo.Update(ctx, u)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	tokens, err := s.generateTokenPair(ctx, u)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	u.RecordSuccessfulLogin()
	_ = s.userRepo.Update(ctx, u)

	logger.Info(ctx, "user logged in",
		"user_id", u.ID,
		"role", u.Role,
		"email", u.Email)

	return tokens, u, nil
}

// RefreshToken rotates a refresh token and mints a new token pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	token, err := s.tokenRepo.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	u, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := u.CanLogin(); err != nil {
		return nil, err
	}

	// Rotation: the presented token is spent regardless of what follows.
	_ = s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed")

	return s.generateTokenPair(ctx, u)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	token, err := s.tokenRepo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		// Already invalid; logout is idempotent.
		return nil
	}
	return s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "logout")
}

// LogoutAll revokes all refresh tokens for a user.
func (s *Service) LogoutAll(ctx context.Context, userID id.ID) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "logout_all")
}

// Verify validates an access token and returns the identity it carries.
func (s *Service) Verify(tokenString string) (*appctx.Identity, error) {
	ident, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.NewForbidden("invalid or expired token")
	}
	return ident, nil
}

// GetUserByID retrieves a user for the authenticated identity.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

// ChangePassword changes the password of the authenticated user.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, oldPassword, newPassword string) error {
	if len(newPassword) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "newPassword")
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.NewNotFound("user", userID.String())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return apperror.NewUnauthorized("invalid credentials")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(newHash)
	u.Touch()

	if err := s.userRepo.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	// All existing sessions are invalidated on password change.
	_ = s.tokenRepo.RevokeAllUserTokens(ctx, userID, "password_changed")

	logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

func (s *Service) generateTokenPair(ctx context.Context, u *user.User) (*TokenPair, error) {
	ident := &appctx.Identity{
		UserID:         u.ID,
		Email:          u.Email,
		Role:           u.Role,
		EntrepreneurID: u.EntrepreneurID,
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(ident)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenStr, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    u.ID,
		TokenHash: hashToken(refreshTokenStr),
		ExpiresAt: time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenStr,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
