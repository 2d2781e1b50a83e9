package service

import (
	"context"
	"time"

	"socialite-be/internal/config"
	"socialite-be/internal/dto"
	"socialite-be/internal/entity"
	"socialite-be/internal/pkg/apperror"
	"socialite-be/internal/repository/specification"
	"socialite-be/internal/repository/unitofwork"

	"socialite-be/pkg/events"
	pktNats "socialite-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	authCfg        config.AuthConfig
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher, authCfg config.AuthConfig) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		authCfg:        authCfg,
	}
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check for existing email / username
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Storage("failed to check existing email", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("email already registered")
	}

	existing, err = uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, apperror.Storage("failed to check existing username", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("username already taken")
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 3. Create User Entity
	user := &entity.User{
		Id:           uuid.New(),
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         entity.UserRoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperror.Storage("failed to create user", err)
	}

	// 4. Announce the new account. Best effort: a signup must not fail
	// because the event bus is down.
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewUserRegisteredEvent(user.Id, user.Username))
	}

	// 5. Issue token so the client is logged in right away
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{User: toUserResponse(user), Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check if user exists
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperror.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	// 2. Compare passwords
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	// 3. Generate JWT
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{User: toUserResponse(user), Token: token}, nil
}

func (s *authService) issueToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(s.authCfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.authCfg.JWTSecret))
}

func toUserResponse(user *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:          user.Id,
		FullName:    user.FullName,
		Username:    user.Username,
		Email:       user.Email,
		ProfilePic:  user.ProfilePic,
		Bio:         user.Bio,
		Role:        string(user.Role),
		IsPrivate:   user.IsPrivate,
		Interests:   user.Interests,
		Location:    user.Location,
		CoverPhoto:  user.CoverPhoto,
		Website:     user.Website,
		PhoneNumber: user.PhoneNumber,
		CreatedAt:   user.CreatedAt,
	}
}
