package app

import (
	"testing"
	"time"

	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_ADDR", "")
	cfg, err := LoadConfig(testutil.Logger(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBDriver != "postgres" || cfg.ObjectStorageMode != "local" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if len(cfg.TrustedProxies) != 0 || cfg.MetricsEnabled {
		t.Fatalf("proxies/metrics defaults: %v %v", cfg.TrustedProxies, cfg.MetricsEnabled)
	}
	if cfg.AccessTokenTTL != time.Hour || cfg.RefreshTokenTTL != 720*time.Hour {
		t.Fatalf("ttls: %v %v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CORS_ORIGINS", "https://marmora.example,https://admin.marmora.example")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")
	cfg, err := LoadConfig(testutil.Logger(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.marmora.example" {
		t.Fatalf("origins: %v", cfg.CORSOrigins)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Fatalf("proxies: %v", cfg.TrustedProxies)
	}
	if cfg.AccessTokenTTL != 15*time.Minute || cfg.DBDriver != "sqlite" {
		t.Fatalf("cfg: %+v", cfg)
	}
}

func TestLoadConfigRejectsDefaultSecretInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "defaultsecret")
	if _, err := LoadConfig(testutil.Logger(t)); err == nil {
		t.Fatal("want error for default secret in production")
	}
}
