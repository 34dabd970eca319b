package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/ctxutil"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

const minPasswordLength = 10

var ErrInvalidCredentials = errors.New("invalid email or password")

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"`
	User         *types.AdminUser `json:"user"`
}

type CreateAdminInput struct {
	Email    string
	Password string
	Name     string
	Role     types.Role
}

type AuthService interface {
	CreateAdmin(ctx context.Context, in CreateAdminInput) (*types.AdminUser, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*types.AdminUser, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	adminUserRepo repos.AdminUserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	adminUserRepo repos.AdminUserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		adminUserRepo: adminUserRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) CreateAdmin(ctx context.Context, in CreateAdminInput) (*types.AdminUser, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = types.RoleAdmin
	}

	var v validation.Errors
	v.Email("email", in.Email)
	v.Required("name", in.Name)
	if validation.Length(in.Password) < minPasswordLength {
		v.Add("password", validation.CodeInvalid, map[string]any{"Min": minPasswordLength})
	}
	if !in.Role.Valid() {
		v.Add("role", validation.CodeInvalid, nil)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *types.AdminUser
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.adminUserRepo.EmailExists(dbc, in.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.Conflict(CodeConflict, "admin %s already exists", in.Email)
		}
		rows, err := as.adminUserRepo.Create(dbc, []*types.AdminUser{{
			Email:    in.Email,
			Password: string(hash),
			Name:     in.Name,
			Role:     in.Role,
		}})
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		created = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("Admin created", "admin_id", created.ID, "role", created.Role)
	return created, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apierr.New(http.StatusUnauthorized, CodeUnauthorized, ErrInvalidCredentials)
	}

	users, err := as.adminUserRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if len(users) == 0 {
		// Unknown emails still pay for one bcrypt comparison.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, apierr.New(http.StatusUnauthorized, CodeUnauthorized, ErrInvalidCredentials)
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		as.log.Warn("Admin login rejected", "admin_id", user.ID)
		return nil, apierr.New(http.StatusUnauthorized, CodeUnauthorized, ErrInvalidCredentials)
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := as.pruneExpired(dbc, user.ID); err != nil {
			return err
		}
		p, err := as.issue(dbc, user)
		if err != nil {
			return err
		}
		now := as.now()
		if err := as.adminUserRepo.UpdateLastLogin(dbc, user.ID, now); err != nil {
			return fmt.Errorf("update last login: %w", err)
		}
		user.LastLoginAt = &now
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("Admin logged in", "admin_id", user.ID)
	return pair, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("marmora-dummy-password"), bcrypt.DefaultCost)

func (as *authService) pruneExpired(dbc dbctx.Context, userID uuid.UUID) error {
	tokens, err := as.userTokenRepo.GetByUserIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	now := as.now()
	var expired []*types.UserToken
	for _, t := range tokens {
		if t != nil && t.ExpiresAt.Before(now) {
			expired = append(expired, t)
		}
	}
	if len(expired) == 0 {
		return nil
	}
	if err := as.userTokenRepo.FullDeleteByTokens(dbc, expired); err != nil {
		return fmt.Errorf("delete expired tokens: %w", err)
	}
	return nil
}

func (as *authService) issue(dbc dbctx.Context, user *types.AdminUser) (*TokenPair, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    as.now().Add(as.refreshTTL),
	}}); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(as.accessTTL / time.Second),
		User:         user,
	}, nil
}

func newOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Refresh rotates the pair: the old row is deleted and a new one stored.
func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			refreshToken = rd.RefreshToken
		}
	}
	if refreshToken == "" {
		return nil, apierr.Unauthorized(CodeUnauthorized, "refresh token required")
	}

	var (
		pair    *TokenPair
		expired bool
	)
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if len(found) == 0 || found[0] == nil {
			return apierr.Unauthorized(CodeUnauthorized, "unknown refresh token")
		}
		existing := found[0]
		if err := as.userTokenRepo.FullDeleteByTokens(dbc, []*types.UserToken{existing}); err != nil {
			return fmt.Errorf("delete old token: %w", err)
		}
		// The expired row is deleted and committed before rejecting.
		if existing.ExpiresAt.Before(as.now()) {
			expired = true
			return nil
		}
		users, err := as.adminUserRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load admin: %w", err)
		}
		if len(users) == 0 {
			return apierr.Unauthorized(CodeUnauthorized, "admin no longer exists")
		}
		pair, err = as.issue(dbc, users[0])
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, apierr.Unauthorized(CodeUnauthorized, "refresh token expired")
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized(CodeUnauthorized, "not signed in")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
		if err != nil {
			return fmt.Errorf("load token: %w", err)
		}
		if len(found) == 0 {
			return nil
		}
		if err := as.userTokenRepo.FullDeleteByTokens(dbc, found); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		as.log.Info("Admin logged out", "admin_id", rd.AdminID)
		return nil
	})
}

func (as *authService) Me(ctx context.Context) (*types.AdminUser, error) {
	id := requestAdminID(ctx)
	if id == nil {
		return nil, apierr.Unauthorized(CodeUnauthorized, "not signed in")
	}
	users, err := as.adminUserRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{*id})
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.Unauthorized(CodeUnauthorized, "admin no longer exists")
	}
	return users[0], nil
}

func (as *authService) generateAccessToken(user *types.AdminUser) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates the JWT and its stored token row, then
// attaches the admin identity to the request data.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized(CodeUnauthorized, "missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.Unauthorized(CodeUnauthorized, "invalid or expired token")
	}
	adminID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized(CodeUnauthorized, "invalid subject in token")
	}
	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("load token: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return ctx, apierr.Unauthorized(CodeUnauthorized, "token revoked")
	}

	ctx, rd := ctxutil.EnsureRequestData(ctx)
	rd.AdminID = adminID
	rd.Role = claims.Role
	rd.TokenString = tokenString
	rd.RefreshToken = found[0].RefreshToken
	return ctx, nil
}
