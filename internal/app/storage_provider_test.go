package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	"github.com/yungbote/marmora-backend/internal/platform/gcp"
	"github.com/yungbote/marmora-backend/internal/platform/localstore"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		src  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{"missing bucket", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingBucket}, StorageProviderBootstrapErrorMissingBucket},
		{"missing emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"connect", errors.New("dial tcp: refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.src)
			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if !errors.Is(err, tc.src) {
				t.Fatalf("cause not wrapped: %v", err)
			}
		})
	}
}

func TestResolveObjectStorageInvalidMode(t *testing.T) {
	_, err := resolveObjectStorage(testutil.Logger(t), Config{ObjectStorageMode: "ftp"})
	if storageProviderBootstrapErrorCode(err) != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("want invalid_mode, got %v", err)
	}
}

func TestResolveObjectStorageLocal(t *testing.T) {
	dir := t.TempDir()
	st, err := resolveObjectStorage(testutil.Logger(t), Config{
		ObjectStorageMode: "local",
		LocalMediaDir:     dir,
		LocalMediaPrefix:  "uploads/",
	})
	if err != nil {
		t.Fatalf("resolveObjectStorage: %v", err)
	}
	if _, ok := st.Store.(*localstore.Store); !ok {
		t.Fatalf("store type %T", st.Store)
	}
	if st.LocalPrefix != "/uploads" || st.LocalDir == "" {
		t.Fatalf("local storage: %+v", st)
	}
	if got := st.Store.PublicURL("products/a.png"); got != "/uploads/products/a.png" {
		t.Fatalf("PublicURL = %q", got)
	}
}

type stubBucket struct{}

func (stubBucket) Upload(context.Context, string, string, io.Reader) error { return nil }
func (stubBucket) Delete(context.Context, string) error                    { return nil }
func (stubBucket) Open(context.Context, string) (io.ReadCloser, error)     { return nil, nil }
func (stubBucket) PublicURL(key string) string                             { return "https://cdn.example/" + key }

func TestResolveObjectStorageGCSPassesConfig(t *testing.T) {
	prev := newBucketService
	t.Cleanup(func() { newBucketService = prev })

	var captured gcp.ObjectStorageConfig
	newBucketService = func(_ *logger.Logger, cfg gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		captured = cfg
		return stubBucket{}, nil
	}
	st, err := resolveObjectStorage(testutil.Logger(t), Config{
		ObjectStorageMode: " GCS ",
		StorageBucket:     "marmora-media",
		StorageCDNDomain:  "cdn.example",
	})
	if err != nil {
		t.Fatalf("resolveObjectStorage: %v", err)
	}
	if captured.Mode != gcp.ObjectStorageModeGCS || captured.Bucket != "marmora-media" || captured.CDNDomain != "cdn.example" {
		t.Fatalf("captured: %+v", captured)
	}
	if st.LocalDir != "" {
		t.Fatalf("gcs mode must not serve a local dir: %+v", st)
	}
}

func TestResolveObjectStorageEmulatorWithoutHost(t *testing.T) {
	_, err := resolveObjectStorage(testutil.Logger(t), Config{
		ObjectStorageMode: "gcs_emulator",
		StorageBucket:     "marmora-media",
	})
	if storageProviderBootstrapErrorCode(err) != StorageProviderBootstrapErrorMissingEmulatorHost {
		t.Fatalf("want missing_emulator_host, got %v", err)
	}
}
