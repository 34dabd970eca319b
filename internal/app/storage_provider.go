package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/marmora-backend/internal/platform/gcp"
	"github.com/yungbote/marmora-backend/internal/platform/localstore"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/services"
)

var newBucketService = gcp.NewBucketService

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ObjectStorage is the resolved media backend. LocalDir is set only in local
// mode, where the router serves it under LocalPrefix.
type ObjectStorage struct {
	Store       services.ObjectStore
	Mode        gcp.ObjectStorageMode
	LocalDir    string
	LocalPrefix string
}

func objectStorageConfig(cfg Config) gcp.ObjectStorageConfig {
	return gcp.ObjectStorageConfig{
		Mode:          gcp.NormalizeMode(cfg.ObjectStorageMode, cfg.StorageEmulatorHost),
		Bucket:        strings.TrimSpace(cfg.StorageBucket),
		CDNDomain:     strings.TrimSpace(cfg.StorageCDNDomain),
		EmulatorHost:  strings.TrimSpace(cfg.StorageEmulatorHost),
		PublicBaseURL: strings.TrimSpace(cfg.StoragePublicBase),
		Credentials:   strings.TrimSpace(cfg.StorageCredentials),
	}
}

func resolveObjectStorage(log *logger.Logger, cfg Config) (*ObjectStorage, error) {
	storageCfg := objectStorageConfig(cfg)

	if !gcp.IsSupportedObjectStorageMode(storageCfg.Mode) {
		err := &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorInvalidMode,
			Mode:         string(storageCfg.Mode),
			EmulatorHost: storageCfg.EmulatorHost,
			Cause:        fmt.Errorf("unsupported object storage mode %q", storageCfg.Mode),
		}
		log.Error(
			"Object storage provider selection failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", err.Code,
			"error", err,
		)
		return nil, err
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"bucket", storageCfg.Bucket,
		"emulator_host", storageCfg.EmulatorHost,
	)

	if storageCfg.Mode == gcp.ObjectStorageModeLocal {
		prefix := "/" + strings.Trim(cfg.LocalMediaPrefix, "/")
		base := prefix
		if storageCfg.PublicBaseURL != "" {
			base = storageCfg.PublicBaseURL
		}
		store, err := localstore.New(log, cfg.LocalMediaDir, base)
		if err != nil {
			return nil, &StorageProviderBootstrapError{
				Code:  StorageProviderBootstrapErrorConnectFailed,
				Mode:  string(storageCfg.Mode),
				Cause: err,
			}
		}
		return &ObjectStorage{Store: store, Mode: storageCfg.Mode, LocalDir: store.Root(), LocalPrefix: prefix}, nil
	}

	bucket, err := newBucketService(log, storageCfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return &ObjectStorage{Store: bucket, Mode: storageCfg.Mode}, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingBucket:
			code = StorageProviderBootstrapErrorMissingBucket
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
