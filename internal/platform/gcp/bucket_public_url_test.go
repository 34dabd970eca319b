package gcp

import (
	"testing"
)

func TestResolveObjectStoragePublicBaseURLGCSDefault(t *testing.T) {
	baseURL, source, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{
		Mode:   ObjectStorageModeGCS,
		Bucket: "media",
	})
	if err != nil {
		t.Fatalf("resolveObjectStoragePublicBaseURL: %v", err)
	}
	if baseURL != "" {
		t.Fatalf("baseURL: want empty got=%q", baseURL)
	}
	if source != "gcs_default" {
		t.Fatalf("source: want=%q got=%q", "gcs_default", source)
	}
}

func TestResolveObjectStoragePublicBaseURLEmulatorFallback(t *testing.T) {
	baseURL, source, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{
		Mode:         ObjectStorageModeGCSEmulator,
		EmulatorHost: "http://fake-gcs:4443",
	})
	if err != nil {
		t.Fatalf("resolveObjectStoragePublicBaseURL: %v", err)
	}
	if baseURL != "http://fake-gcs:4443" {
		t.Fatalf("baseURL: want=%q got=%q", "http://fake-gcs:4443", baseURL)
	}
	if source != "storage_emulator_host" {
		t.Fatalf("source: want=%q got=%q", "storage_emulator_host", source)
	}
}

func TestResolveObjectStoragePublicBaseURLOverride(t *testing.T) {
	baseURL, source, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{
		Mode:          ObjectStorageModeGCSEmulator,
		EmulatorHost:  "http://fake-gcs:4443",
		PublicBaseURL: "http://localhost:4443/",
	})
	if err != nil {
		t.Fatalf("resolveObjectStoragePublicBaseURL: %v", err)
	}
	if baseURL != "http://localhost:4443" {
		t.Fatalf("baseURL: want=%q got=%q", "http://localhost:4443", baseURL)
	}
	if source != "object_storage_public_base_url" {
		t.Fatalf("source: want=%q got=%q", "object_storage_public_base_url", source)
	}
}

func TestResolveObjectStoragePublicBaseURLInvalid(t *testing.T) {
	_, _, err := resolveObjectStoragePublicBaseURL(ObjectStorageConfig{
		Mode:          ObjectStorageModeGCSEmulator,
		EmulatorHost:  "http://fake-gcs:4443",
		PublicBaseURL: "localhost:4443",
	})
	if err == nil {
		t.Fatalf("resolveObjectStoragePublicBaseURL: expected error, got nil")
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		bs   *bucketService
		key  string
		want string
	}{
		{
			name: "gcs default",
			bs:   &bucketService{bucket: "media-bucket"},
			key:  "products/carrara/1.jpg",
			want: "https://storage.googleapis.com/media-bucket/products/carrara/1.jpg",
		},
		{
			name: "cdn domain",
			bs:   &bucketService{bucket: "media-bucket", cdnDomain: "cdn.example.com"},
			key:  "products/carrara/1.jpg",
			want: "https://cdn.example.com/products/carrara/1.jpg",
		},
		{
			name: "public base url",
			bs:   &bucketService{bucket: "media-bucket", publicBaseURL: "http://localhost:4443"},
			key:  "/blog/cover.webp",
			want: "http://localhost:4443/media-bucket/blog/cover.webp",
		},
		{
			name: "emulator media endpoint",
			bs: &bucketService{
				bucket:        "media-bucket",
				storageMode:   ObjectStorageModeGCSEmulator,
				publicBaseURL: "http://localhost:4443",
			},
			key:  "products/a/1.png",
			want: "http://localhost:4443/storage/v1/b/media-bucket/o/products%2Fa%2F1.png?alt=media",
		},
		{
			name: "emulator host fallback",
			bs: &bucketService{
				bucket:       "media-bucket",
				storageMode:  ObjectStorageModeGCSEmulator,
				emulatorHost: "http://fake-gcs:4443",
			},
			key:  "/products/a/1.png",
			want: "http://fake-gcs:4443/storage/v1/b/media-bucket/o/products%2Fa%2F1.png?alt=media",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bs.PublicURL(tc.key); got != tc.want {
				t.Fatalf("PublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a/b.PNG":      "image/png",
		"a/b.jpeg":     "image/jpeg",
		"a/b.webp?v=2": "image/webp",
		"a/b.svg":      "image/svg+xml",
		"a/b.pdf":      "",
		"no-extension": "",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Errorf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
