package app

import (
	"context"
	"fmt"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	"github.com/yungbote/marmora-backend/internal/data/seed"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/services"
)

// Seed applies the seed file (or the embedded demo data when path is empty).
func (b *Base) Seed(ctx context.Context, path string) (*seed.Result, error) {
	if path == "" {
		path = b.Cfg.SeedFile
	}
	f, err := seed.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := seed.NewSeeder(b.DB, b.Log).Apply(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	return res, nil
}

func (b *Base) CreateAdmin(ctx context.Context, email, password, name, role string) (*types.AdminUser, error) {
	auth := services.NewAuthService(b.DB, b.Log,
		repos.NewAdminUserRepo(b.DB, b.Log),
		repos.NewUserTokenRepo(b.DB, b.Log),
		b.Cfg.JWTSecretKey, b.Cfg.AccessTokenTTL, b.Cfg.RefreshTokenTTL)
	return auth.CreateAdmin(ctx, services.CreateAdminInput{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     types.Role(role),
	})
}
