package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"patroltrack/internal/config"
	domainUser "patroltrack/internal/domain/user"
	"patroltrack/internal/logger"
	appErrors "patroltrack/pkg/errors"
	"patroltrack/pkg/utils"
)

const storageTimeout = 5 * time.Second

// Service implements account management: registration with admin
// verification, login, token refresh and profile maintenance.
type Service struct {
	userRepo  domainUser.Repository
	tokenRepo domainUser.RefreshTokenRepository
	jwtConfig *config.JWTConfig

	now func() time.Time
}

func NewService(
	userRepo domainUser.Repository,
	tokenRepo domainUser.RefreshTokenRepository,
	jwtConfig *config.JWTConfig,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtConfig: jwtConfig,
		now:       time.Now,
	}
}

// Register creates a new account in pending status. The account cannot log in
// until an admin verifies it.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid registration data", err)
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.NewAppError("WEAK_PASSWORD", err.Error(), appErrors.ErrWeakPassword)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.NewAppError("INTERNAL_ERROR", "Failed to process password", err)
	}

	u := &domainUser.User{
		Username:       utils.SanitizeString(req.Username),
		PasswordHashed: hashed,
		Role:           req.Role,
		Status:         domainUser.StatusPending,
		FullName:       utils.SanitizeString(req.FullName),
		Email:          utils.SanitizeString(req.Email),
		Address:        req.Address,
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.userRepo.Create(sctx, u); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return nil, appErrors.NewAppError("USER_EXISTS", "Username is already taken", err)
		}
		return nil, s.storageError("failed to create user", err)
	}

	logger.Info("User registered",
		zap.String("username", u.Username),
		zap.String("role", u.Role),
		zap.String("event", "user_registered"),
	)

	return ToUserResponse(u), nil
}

// Login authenticates a verified account and issues a token pair. The refresh
// token is persisted so it can be revoked.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid login data", err)
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	u, err := s.userRepo.GetByUsername(sctx, req.Username)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NewAppError("INVALID_CREDENTIALS", "Invalid username or password", appErrors.ErrInvalidCredentials)
		}
		return nil, s.storageError("failed to load user", err)
	}

	if !utils.CheckPassword(u.PasswordHashed, req.Password) {
		return nil, appErrors.NewAppError("INVALID_CREDENTIALS", "Invalid username or password", appErrors.ErrInvalidCredentials)
	}

	if !u.IsVerified() {
		return nil, appErrors.NewAppError("USER_NOT_VERIFIED", "Account is pending admin verification", domainUser.ErrUserNotVerified)
	}

	tokens, err := utils.GenerateTokenPair(
		u.ID, u.Username, u.Role,
		s.jwtConfig.Secret, s.jwtConfig.ExpiryHours, s.jwtConfig.RefreshExpiryHours,
	)
	if err != nil {
		return nil, appErrors.NewAppError("INTERNAL_ERROR", "Failed to issue tokens", err)
	}

	if err := s.storeRefreshToken(ctx, u.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	logger.Info("User logged in",
		zap.String("username", u.Username),
		zap.String("event", "user_logged_in"),
	)

	return &LoginResponse{
		User:   ToUserResponse(u),
		Tokens: tokens,
	}, nil
}

// Refresh validates a stored refresh token and rotates it: the old token is
// revoked and a new pair is issued.
func (s *Service) Refresh(ctx context.Context, req *RefreshRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid refresh data", err)
	}

	claims, err := utils.ValidateToken(req.RefreshToken, s.jwtConfig.Secret)
	if err != nil {
		return nil, appErrors.NewAppError("INVALID_TOKEN", "Invalid or expired refresh token", err)
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	stored, err := s.tokenRepo.GetByToken(sctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, domainUser.ErrTokenNotFound) {
			return nil, appErrors.NewAppError("INVALID_TOKEN", "Unknown refresh token", appErrors.ErrInvalidToken)
		}
		return nil, s.storageError("failed to load refresh token", err)
	}
	if stored.Revoked {
		return nil, appErrors.NewAppError("INVALID_TOKEN", "Refresh token has been revoked", domainUser.ErrTokenRevoked)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, appErrors.NewAppError("INVALID_TOKEN", "Refresh token has expired", appErrors.ErrInvalidToken)
	}

	u, err := s.getUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsVerified() {
		return nil, appErrors.NewAppError("USER_NOT_VERIFIED", "Account is pending admin verification", domainUser.ErrUserNotVerified)
	}

	tokens, err := utils.GenerateTokenPair(
		u.ID, u.Username, u.Role,
		s.jwtConfig.Secret, s.jwtConfig.ExpiryHours, s.jwtConfig.RefreshExpiryHours,
	)
	if err != nil {
		return nil, appErrors.NewAppError("INTERNAL_ERROR", "Failed to issue tokens", err)
	}

	rctx, rcancel := context.WithTimeout(ctx, storageTimeout)
	defer rcancel()
	if err := s.tokenRepo.Revoke(rctx, req.RefreshToken); err != nil {
		return nil, s.storageError("failed to rotate refresh token", err)
	}

	if err := s.storeRefreshToken(ctx, u.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:   ToUserResponse(u),
		Tokens: tokens,
	}, nil
}

// Logout revokes every stored refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.tokenRepo.RevokeAllForUser(sctx, userID); err != nil {
		return s.storageError("failed to revoke tokens", err)
	}

	logger.Info("User logged out",
		zap.String("user_id", userID.String()),
		zap.String("event", "user_logged_out"),
	)

	return nil
}

// GetProfile returns the account of the given user.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(u), nil
}

// UpdateProfile applies the non-nil fields of the request to the account.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid profile data", err)
	}

	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = utils.SanitizeString(*req.FullName)
	}
	if req.Email != nil {
		u.Email = utils.SanitizeString(*req.Email)
	}
	if req.Address != nil {
		u.Address = req.Address
	}
	if req.ImageKey != nil {
		u.ImageKey = req.ImageKey
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.userRepo.Update(sctx, u); err != nil {
		return nil, s.storageError("failed to update profile", err)
	}

	return ToUserResponse(u), nil
}

// VerifyUser marks a pending account as verified. Admin only; enforced by the
// route middleware.
func (s *Service) VerifyUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.userRepo.UpdateStatus(sctx, userID, domainUser.StatusVerified); err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NewAppError("USER_NOT_FOUND", "No such user", err)
		}
		return nil, s.storageError("failed to verify user", err)
	}

	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("User verified",
		zap.String("username", u.Username),
		zap.String("event", "user_verified"),
	)

	return ToUserResponse(u), nil
}

// ListUsers returns accounts, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]*UserResponse, error) {
	if role != "" && role != domainUser.RoleResident && role != domainUser.RoleTanod && role != domainUser.RoleAdmin {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Unknown role filter", domainUser.ErrInvalidRole)
	}

	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	users, err := s.userRepo.List(sctx, role)
	if err != nil {
		return nil, s.storageError("failed to list users", err)
	}

	return ToUserResponses(users), nil
}

// DeleteUser removes an account and revokes its sessions.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if err := s.tokenRepo.RevokeAllForUser(sctx, userID); err != nil {
		return s.storageError("failed to revoke tokens", err)
	}

	if err := s.userRepo.Delete(sctx, userID); err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return appErrors.NewAppError("USER_NOT_FOUND", "No such user", err)
		}
		return s.storageError("failed to delete user", err)
	}

	logger.Info("User deleted",
		zap.String("user_id", userID.String()),
		zap.String("event", "user_deleted"),
	)

	return nil
}

// StartTokenCleanup periodically deletes expired refresh tokens until ctx is
// cancelled. Run it in its own goroutine.
func (s *Service) StartTokenCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
				logger.Warn("Failed to delete expired refresh tokens", zap.Error(err))
			}
		}
	}
}

func (s *Service) getUser(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	u, err := s.userRepo.GetByID(sctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.NewAppError("USER_NOT_FOUND", "No such user", err)
		}
		return nil, s.storageError("failed to load user", err)
	}

	return u, nil
}

func (s *Service) storeRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	sctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	rt := &domainUser.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(time.Duration(s.jwtConfig.RefreshExpiryHours) * time.Hour),
	}
	if err := s.tokenRepo.Create(sctx, rt); err != nil {
		return s.storageError("failed to store refresh token", err)
	}

	return nil
}

func (s *Service) storageError(msg string, err error) error {
	return appErrors.NewAppError("STORAGE_UNAVAILABLE", msg, err)
}
