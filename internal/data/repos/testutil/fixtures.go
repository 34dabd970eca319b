package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/marmora-backend/internal/domain"
)

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, role types.Role) *types.AdminUser {
	tb.Helper()
	u := &types.AdminUser{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Admin",
		Role:     role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed admin: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:          uuid.New(),
		Slug:        slug,
		Name:        types.NewLocalized(types.LocalizedText{"en": slug, "fr": slug + " (fr)"}),
		Description: types.NewLocalized(nil),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, categoryID *uuid.UUID, published, featured bool) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:          uuid.New(),
		Slug:        slug,
		SKU:         "SKU-" + slug,
		CategoryID:  categoryID,
		Material:    "marble",
		Origin:      "EG",
		Name:        types.NewLocalized(types.LocalizedText{"en": "Product " + slug, "ar": "منتج " + slug}),
		Description: types.NewLocalized(types.LocalizedText{"en": "Description " + slug}),
		Finishes:    datatypes.JSONSlice[string]{"polished"},
		Thicknesses: datatypes.JSONSlice[string]{"2cm"},
		Images:      datatypes.JSONSlice[string]{},
		Published:   published,
		Featured:    featured,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedQuote(tb testing.TB, ctx context.Context, tx *gorm.DB, reference string, status types.QuoteStatus) *types.QuoteRequest {
	tb.Helper()
	q := &types.QuoteRequest{
		ID:        uuid.New(),
		Reference: reference,
		Status:    status,
		Locale:    "en",
		Items: datatypes.JSONSlice[types.QuoteItem]{
			{ProductName: "Galala Beige", Quantity: 120, Unit: "m2"},
		},
		FullName: "Buyer",
		Email:    "buyer@example.com",
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quote: %v", err)
	}
	return q
}

func SeedBlogPost(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, publishedAt *time.Time) *types.BlogPost {
	tb.Helper()
	p := &types.BlogPost{
		ID:          uuid.New(),
		Slug:        slug,
		Title:       types.NewLocalized(types.LocalizedText{"en": "Post " + slug}),
		Excerpt:     types.NewLocalized(nil),
		Body:        types.NewLocalized(types.LocalizedText{"en": "Body"}),
		Tags:        datatypes.JSONSlice[string]{},
		Published:   publishedAt != nil,
		PublishedAt: publishedAt,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed blog post: %v", err)
	}
	return p
}
