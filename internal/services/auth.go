package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/repos"
	"github.com/passarei/backend/internal/types"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ResolveUserID(ctx context.Context, tokenString string) (uuid.UUID, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apierr.Newf(apierr.CodeMissingField, "email e senha sao obrigatorios")
	}
	existing, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	if existing != nil {
		return nil, apierr.Newf(apierr.CodeValidationError, "email ja cadastrado")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	user := &types.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	if err := as.userRepo.Create(ctx, nil, user); err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	as.log.Info("User registered", "user_id", user.ID.String())
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	if user == nil {
		return nil, apierr.Newf(apierr.CodeUnauthorized, "credenciais invalidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Newf(apierr.CodeUnauthorized, "credenciais invalidas")
	}
	return as.issueTokens(ctx, user.ID)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	row, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	if row == nil || time.Now().After(row.ExpiresAt) {
		return nil, apierr.Newf(apierr.CodeUnauthorized, "refresh token invalido ou expirado")
	}
	if err := as.userTokenRepo.DeleteByUserID(ctx, nil, row.UserID); err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	return as.issueTokens(ctx, row.UserID)
}

func (as *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := as.userTokenRepo.DeleteByUserID(ctx, nil, userID); err != nil {
		return apierr.New(apierr.CodeDatabase, err)
	}
	return nil
}

// ResolveUserID verifies the access token signature and expiry and returns
// the subject. This is the identity-resolution collaborator consumed by the
// auth middleware.
func (as *authService) ResolveUserID(ctx context.Context, tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierr.Newf(apierr.CodeUnauthorized, "metodo de assinatura inesperado")
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apierr.Newf(apierr.CodeUnauthorized, "token invalido")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apierr.Newf(apierr.CodeUnauthorized, "token invalido")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, apierr.Newf(apierr.CodeUnauthorized, "token sem subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apierr.Newf(apierr.CodeUnauthorized, "subject invalido")
	}
	return userID, nil
}

func (as *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(as.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}

	refresh := uuid.New().String()
	row := &types.UserToken{
		UserID:       userID,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if err := as.userTokenRepo.Create(ctx, nil, row); err != nil {
		return nil, apierr.New(apierr.CodeDatabase, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
