package seed

import (
	"context"
	"testing"

	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marmora-backend/internal/domain"
)

func TestEmbeddedSeedParses(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Categories) == 0 || len(f.Products) == 0 {
		t.Fatalf("embedded seed is empty: %+v", f)
	}
}

func TestParseRejectsUnknownMaterial(t *testing.T) {
	raw := []byte("version: 1\nproducts:\n  - slug: x\n    material: plastic\n")
	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected error for unknown material")
	}
	if _, err := Parse([]byte("version: 2\n")); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	s := NewSeeder(db, testutil.Logger(t))

	f, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	first, err := s.Apply(ctx, f)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if first.Products != len(f.Products) || first.Categories != len(f.Categories) {
		t.Fatalf("first run: %+v", first)
	}

	second, err := s.Apply(ctx, f)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if *second != (Result{}) {
		t.Fatalf("second run inserted rows: %+v", second)
	}

	var p types.Product
	if err := db.Where("slug = ?", "red-aswan").First(&p).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if p.CategoryID == nil {
		t.Fatalf("product not linked to its category")
	}
}
