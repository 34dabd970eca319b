package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
)

func TestCategoryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCategoryRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Category{
		{Slug: "granite", Name: types.NewLocalized(types.LocalizedText{"en": "Granite"}), SortOrder: 2},
		{Slug: "marble", Name: types.NewLocalized(types.LocalizedText{"en": "Marble"}), SortOrder: 1},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := repo.List(dbc)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(list))
	}
	if list[0].Slug != "marble" {
		t.Fatalf("List order: want marble first, got %q", list[0].Slug)
	}

	got, err := repo.GetBySlug(dbc, "granite")
	if err != nil || got == nil || got.ID != created[0].ID {
		t.Fatalf("GetBySlug: err=%v got=%+v", err, got)
	}
	if got.Name.Data()["en"] != "Granite" {
		t.Fatalf("localized name not round-tripped: %+v", got.Name.Data())
	}
	if missing, err := repo.GetBySlug(dbc, "nope"); err != nil || missing != nil {
		t.Fatalf("GetBySlug (missing): err=%v got=%+v", err, missing)
	}

	exists, err := repo.SlugExists(dbc, "granite", uuid.Nil)
	if err != nil || !exists {
		t.Fatalf("SlugExists: err=%v exists=%v", err, exists)
	}
	exists, err = repo.SlugExists(dbc, "granite", created[0].ID)
	if err != nil || exists {
		t.Fatalf("SlugExists (self excluded): err=%v exists=%v", err, exists)
	}

	got.Slug = "granite-slabs"
	if err := repo.Update(dbc, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if again, _ := repo.GetByID(dbc, got.ID); again == nil || again.Slug != "granite-slabs" {
		t.Fatalf("Update not applied: %+v", again)
	}

	if err := repo.Delete(dbc, got.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gone, _ := repo.GetByID(dbc, got.ID); gone != nil {
		t.Fatalf("Delete: category still present")
	}
}

func TestProductRepoList(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProductRepo(db, testutil.Logger(t))

	cat := testutil.SeedCategory(t, ctx, tx, "marble")
	other := testutil.SeedCategory(t, ctx, tx, "granite")
	testutil.SeedProduct(t, ctx, tx, "carrara-white", &cat.ID, true, true)
	testutil.SeedProduct(t, ctx, tx, "nero-marquina", &cat.ID, true, false)
	testutil.SeedProduct(t, ctx, tx, "draft-slab", &cat.ID, false, false)
	testutil.SeedProduct(t, ctx, tx, "absolute-black", &other.ID, true, false)

	all, total, err := repo.List(dbc, ProductFilter{})
	if err != nil || total != 4 || len(all) != 4 {
		t.Fatalf("List all: err=%v total=%d len=%d", err, total, len(all))
	}

	pub, total, err := repo.List(dbc, ProductFilter{PublishedOnly: true})
	if err != nil || total != 3 || len(pub) != 3 {
		t.Fatalf("List published: err=%v total=%d len=%d", err, total, len(pub))
	}

	byCat, total, err := repo.List(dbc, ProductFilter{PublishedOnly: true, CategoryID: &cat.ID})
	if err != nil || total != 2 || len(byCat) != 2 {
		t.Fatalf("List by category: err=%v total=%d len=%d", err, total, len(byCat))
	}
	for _, p := range byCat {
		if p.Category == nil || p.Category.Slug != "marble" {
			t.Fatalf("category not preloaded: %+v", p.Category)
		}
	}

	featured := true
	feat, _, err := repo.List(dbc, ProductFilter{PublishedOnly: true, Featured: &featured})
	if err != nil || len(feat) != 1 || feat[0].Slug != "carrara-white" {
		t.Fatalf("List featured: err=%v got=%v", err, feat)
	}

	found, _, err := repo.List(dbc, ProductFilter{Query: "NERO"})
	if err != nil || len(found) != 1 || found[0].Slug != "nero-marquina" {
		t.Fatalf("List query: err=%v got=%v", err, found)
	}

	page, total, err := repo.List(dbc, ProductFilter{Limit: 2, Offset: 2})
	if err != nil || total != 4 || len(page) != 2 {
		t.Fatalf("List page: err=%v total=%d len=%d", err, total, len(page))
	}

	n, err := repo.CountByCategory(dbc, cat.ID)
	if err != nil || n != 3 {
		t.Fatalf("CountByCategory: err=%v n=%d", err, n)
	}
	n, err = repo.Count(dbc, true)
	if err != nil || n != 3 {
		t.Fatalf("Count published: err=%v n=%d", err, n)
	}
}

func TestProductRepoUpdateDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProductRepo(db, testutil.Logger(t))

	p := testutil.SeedProduct(t, ctx, tx, "calacatta", nil, true, false)

	got, err := repo.GetBySlug(dbc, "calacatta")
	if err != nil || got == nil {
		t.Fatalf("GetBySlug: err=%v got=%v", err, got)
	}
	got.Published = false
	got.Material = types.Material("onyx")
	if err := repo.Update(dbc, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, err := repo.GetByID(dbc, p.ID)
	if err != nil || again == nil {
		t.Fatalf("GetByID: err=%v", err)
	}
	if again.Published || again.Material != "onyx" {
		t.Fatalf("Update not applied: published=%v material=%q", again.Published, again.Material)
	}

	byIDs, err := repo.GetByIDs(dbc, []uuid.UUID{p.ID, uuid.New()})
	if err != nil || len(byIDs) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(byIDs))
	}

	if err := repo.Delete(dbc, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gone, _ := repo.GetByID(dbc, p.ID); gone != nil {
		t.Fatalf("Delete: product still present")
	}
}

func TestProductRepoQueryMatchesNamesOnly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProductRepo(db, testutil.Logger(t))

	carrara := &types.Product{
		Slug:     "carrara",
		SKU:      "MB-001",
		Material: types.Material("marble"),
		Name:     types.NewLocalized(types.LocalizedText{"en": "Carrara", "fr": "Carrare"}),
	}
	nero := &types.Product{
		Slug:     "nero",
		SKU:      "MB-002",
		Material: types.Material("marble"),
		Name:     types.NewLocalized(types.LocalizedText{"en": "Nero Marquina", "ar": "نيرو ماركينا"}),
	}
	if _, err := repo.Create(dbc, []*types.Product{carrara, nero}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		query string
		want  []string
	}{
		{query: "en", want: nil},
		{query: "fr", want: nil},
		{query: `":"`, want: nil},
		{query: "%", want: nil},
		{query: "_", want: nil},
		{query: "carrare", want: []string{"carrara"}},
		{query: "MARQUINA", want: []string{"nero"}},
		{query: "ماركينا", want: []string{"nero"}},
		{query: "mb-00", want: []string{"carrara", "nero"}},
	}
	for _, tc := range cases {
		got, total, err := repo.List(dbc, ProductFilter{Query: tc.query})
		if err != nil {
			t.Fatalf("List(%q): %v", tc.query, err)
		}
		if int(total) != len(tc.want) || len(got) != len(tc.want) {
			t.Fatalf("List(%q): total=%d len=%d want %v", tc.query, total, len(got), tc.want)
		}
		seen := map[string]bool{}
		for _, p := range got {
			seen[p.Slug] = true
		}
		for _, slug := range tc.want {
			if !seen[slug] {
				t.Fatalf("List(%q): missing %q", tc.query, slug)
			}
		}
	}

	nero.Name = types.NewLocalized(types.LocalizedText{"en": "Nero Portoro"})
	if err := repo.Update(dbc, nero); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _, _ := repo.List(dbc, ProductFilter{Query: "marquina"}); len(got) != 0 {
		t.Fatalf("search text not refreshed on update: %d rows", len(got))
	}
	if got, _, _ := repo.List(dbc, ProductFilter{Query: "portoro"}); len(got) != 1 {
		t.Fatalf("updated name not searchable: %d rows", len(got))
	}
}
