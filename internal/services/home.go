package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/marmora-backend/internal/platform/i18n"
)

const (
	homeFeaturedLimit = 8
	homePostsLimit    = 3
)

type HomePage struct {
	Settings    *PublicSettings `json:"settings"`
	Featured    []ProductView   `json:"featured"`
	LatestPosts []BlogPostView  `json:"latest_posts"`
	Categories  []CategoryView  `json:"categories"`
}

type HomeService interface {
	Get(ctx context.Context, locale i18n.Locale) (*HomePage, error)
}

type homeService struct {
	catalog  CatalogService
	blog     BlogService
	settings SettingsService
}

func NewHomeService(catalog CatalogService, blog BlogService, settings SettingsService) HomeService {
	return &homeService{catalog: catalog, blog: blog, settings: settings}
}

func (s *homeService) Get(ctx context.Context, locale i18n.Locale) (*HomePage, error) {
	out := &HomePage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pub, err := s.settings.Public(gctx, locale)
		out.Settings = pub
		return err
	})
	g.Go(func() error {
		featured := true
		res, err := s.catalog.ListProducts(gctx, locale, ProductQuery{
			Featured: &featured,
			Page:     Page{Limit: homeFeaturedLimit},
		})
		if err != nil {
			return err
		}
		out.Featured = res.Items
		return nil
	})
	g.Go(func() error {
		res, err := s.blog.List(gctx, locale, "", Page{Limit: homePostsLimit})
		if err != nil {
			return err
		}
		out.LatestPosts = res.Items
		return nil
	})
	g.Go(func() error {
		cats, err := s.catalog.ListCategories(gctx, locale)
		out.Categories = cats
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
