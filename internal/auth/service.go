package auth

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/task-tracker/internal"
	userDatamodel "github.com/frahmantamala/task-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/task-tracker/internal/role"
	"github.com/frahmantamala/task-tracker/internal/user"
)

type RepositoryAPI interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *userDatamodel.User) error
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email string) (string, error)
	GenerateRefreshToken(userID int64, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type RoleLookup interface {
	GetByName(ctx context.Context, name string) (*role.Role, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	users          UserLoader
	roles          RoleLookup
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, users UserLoader, roles RoleLookup, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		users:          users,
		roles:          roles,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Register creates a user holding the default member role.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.User, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Name = strings.TrimSpace(dto.Name)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, dto.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check email", "error", err)
		return nil, errors.NewInternalError("failed to register user", err)
	}
	if exists {
		return nil, errors.NewConflictError("User already exists", errors.ErrCodeDuplicateEmail)
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	data := &userDatamodel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		RoleName:     role.DefaultName,
	}

	defaultRole, err := s.roles.GetByName(ctx, role.DefaultName)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); !ok || appErr.Type != errors.ErrorTypeNotFound {
			return nil, err
		}
		s.logger.WarnContext(ctx, "default role missing, registering without role reference", "role", role.DefaultName)
	} else {
		data.RoleID = &defaultRole.ID
	}

	if err := s.repo.CreateUser(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to create user", "email", dto.Email, "error", err)
		return nil, errors.NewInternalError("failed to register user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", data.ID, "role", data.RoleName)
	return s.users.GetByID(ctx, data.ID)
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	u, err := s.verifyCredentials(ctx, dto)
	if err != nil {
		return AuthTokens{}, err
	}
	return s.issueTokens(u)
}

// AdminLogin is Authenticate restricted to admin eligible roles.
func (s *Service) AdminLogin(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	u, err := s.verifyCredentials(ctx, dto)
	if err != nil {
		return AuthTokens{}, err
	}
	if !u.IsAdminEligible() {
		s.logger.WarnContext(ctx, "admin login denied", "user_id", u.ID)
		return AuthTokens{}, errors.ErrInsufficientPrivilege
	}
	return s.issueTokens(u)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := UserIDFromClaims(claims)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeNotFound {
			return AuthTokens{}, errors.ErrInvalidToken
		}
		return AuthTokens{}, err
	}
	return s.issueTokens(u)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) verifyCredentials(ctx context.Context, dto LoginDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(dto.Email)))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load credentials", "error", err)
		return nil, errors.NewInternalError("failed to authenticate", err)
	}
	if creds == nil || !VerifyPassword(dto.Password, creds.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}

	return s.users.GetByID(ctx, creds.UserID)
}

func (s *Service) issueTokens(u *user.User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         u,
	}, nil
}
