package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
)

func TestBlogPublishStampsPublishedAtOnce(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	st.blog.(*blogService).now = func() time.Time { return first }

	in := BlogPostInput{
		Slug:  "granite-care",
		Title: types.LocalizedText{"en": "Granite care", "es": "Cuidado del granito"},
		Body:  types.LocalizedText{"en": "Seal twice a year."},
		Tags:  []string{"care", " care ", "granite"},
	}
	p, err := st.blog.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.PublishedAt != nil {
		t.Fatalf("draft must not be stamped: %v", p.PublishedAt)
	}
	if len(p.Tags) != 2 {
		t.Fatalf("tags not deduplicated: %v", p.Tags)
	}

	in.Published = true
	p, err = st.blog.Update(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("Update publish: %v", err)
	}
	if p.PublishedAt == nil || !p.PublishedAt.Equal(first) {
		t.Fatalf("published_at: got=%v want=%v", p.PublishedAt, first)
	}

	st.blog.(*blogService).now = func() time.Time { return first.Add(48 * time.Hour) }
	in.Title["en"] = "Granite care, revised"
	p, err = st.blog.Update(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("Update edit: %v", err)
	}
	if !p.PublishedAt.Equal(first) {
		t.Fatalf("published_at moved on edit: %v", p.PublishedAt)
	}

	v, err := st.blog.Get(ctx, i18n.Spanish, "granite-care")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.Title != "Cuidado del granito" || v.Body != "Seal twice a year." {
		t.Fatalf("localized view: %+v", v)
	}
}

func TestBlogPublicVisibility(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	st.blog.(*blogService).now = func() time.Time { return now }

	older := now.Add(-72 * time.Hour)
	newer := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)
	testutil.SeedBlogPost(t, ctx, st.db, "older", &older)
	testutil.SeedBlogPost(t, ctx, st.db, "newer", &newer)
	testutil.SeedBlogPost(t, ctx, st.db, "scheduled", &future)
	testutil.SeedBlogPost(t, ctx, st.db, "draft", nil)

	res, err := st.blog.List(ctx, i18n.English, "", Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 2 || len(res.Items) != 2 {
		t.Fatalf("want 2 visible posts, got total=%d", res.Total)
	}
	if res.Items[0].Slug != "newer" || res.Items[1].Slug != "older" {
		t.Fatalf("order: %s, %s", res.Items[0].Slug, res.Items[1].Slug)
	}
	if res.Items[0].Body != "" {
		t.Fatalf("list items must not carry the body")
	}

	for _, slug := range []string{"scheduled", "draft", "missing"} {
		_, err := st.blog.Get(ctx, i18n.English, slug)
		if ae, ok := apierr.As(err); !ok || ae.Status != 404 {
			t.Fatalf("%s: want 404, got %v", slug, err)
		}
	}

	all, err := st.blog.AdminList(ctx, Page{})
	if err != nil || all.Total != 4 {
		t.Fatalf("AdminList: total=%v err=%v", all, err)
	}
}

func TestBlogValidation(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	_, err := st.blog.Create(ctx, BlogPostInput{Slug: "ok", Title: types.LocalizedText{"fr": "Titre"}})
	if err == nil {
		t.Fatalf("want validation error without default-locale title and body")
	}
	if _, err := st.blog.Create(ctx, BlogPostInput{Slug: "dup", Title: types.LocalizedText{"en": "A"}, Body: types.LocalizedText{"en": "B"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = st.blog.Create(ctx, BlogPostInput{Slug: "dup", Title: types.LocalizedText{"en": "A"}, Body: types.LocalizedText{"en": "B"}})
	if ae, ok := apierr.As(err); !ok || ae.Status != 409 {
		t.Fatalf("duplicate slug: want 409, got %v", err)
	}
}
