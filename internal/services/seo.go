package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"image"
	"net/url"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

const (
	SEOSourceLocale    = "locale"
	SEOSourceDefault   = "default"
	SEOSourceGenerated = "generated"

	sitemapNS      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapXHTMLNS = "http://www.w3.org/1999/xhtml"
	sitemapBatch   = 500
)

// Page keys look like "home", "products" or "product.carrara-white".
var seoPageRe = regexp.MustCompile(`^[a-z0-9]+(?:[-_.][a-z0-9]+)*$`)

// staticPages are listed in the sitemap under "/<locale>/<path>".
var staticPages = []string{"", "products", "blog", "quote", "contact", "about"}

type SEOView struct {
	Page        string            `json:"page"`
	Locale      string            `json:"locale"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Keywords    string            `json:"keywords"`
	OGImage     string            `json:"og_image"`
	Alternates  map[string]string `json:"alternates"`
	Source      string            `json:"source"`
}

type PageSEOInput struct {
	Page        string `json:"page"`
	Locale      string `json:"locale"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	OGImage     string `json:"og_image"`
}

type SEOService interface {
	Get(ctx context.Context, locale i18n.Locale, page string) (*SEOView, error)
	OGImage(ctx context.Context, locale i18n.Locale, page string) ([]byte, error)
	Sitemap(ctx context.Context) ([]byte, error)

	AdminList(ctx context.Context, page string) ([]*types.PageSEO, error)
	Upsert(ctx context.Context, in PageSEOInput) (*types.PageSEO, error)
	Delete(ctx context.Context, page, locale string) error
}

type seoService struct {
	db          *gorm.DB
	log         *logger.Logger
	repo        repos.PageSEORepo
	productRepo repos.ProductRepo
	blogRepo    repos.BlogPostRepo
	settings    SettingsService
	content     ContentService
	media       MediaService
	renderer    OGRenderer
	siteURL     string
	now         func() time.Time
}

func NewSEOService(
	db *gorm.DB,
	log *logger.Logger,
	repo repos.PageSEORepo,
	productRepo repos.ProductRepo,
	blogRepo repos.BlogPostRepo,
	settings SettingsService,
	content ContentService,
	media MediaService,
	renderer OGRenderer,
	siteURL string,
) SEOService {
	serviceLog := log.With("service", "SEOService")
	return &seoService{
		db:          db,
		log:         serviceLog,
		repo:        repo,
		productRepo: productRepo,
		blogRepo:    blogRepo,
		settings:    settings,
		content:     content,
		media:       media,
		renderer:    renderer,
		siteURL:     strings.TrimRight(strings.TrimSpace(siteURL), "/"),
		now:         time.Now,
	}
}

func (s *seoService) Get(ctx context.Context, locale i18n.Locale, page string) (*SEOView, error) {
	page = strings.ToLower(strings.TrimSpace(page))
	if !seoPageRe.MatchString(page) {
		return nil, notFound("page")
	}
	def := s.settings.DefaultLocale(ctx)
	dbc := dbctx.Context{Ctx: ctx}

	row, err := s.repo.Get(dbc, page, locale.String())
	if err != nil {
		return nil, fmt.Errorf("load page seo: %w", err)
	}
	source := SEOSourceLocale
	if row == nil && def != locale {
		if row, err = s.repo.Get(dbc, page, def.String()); err != nil {
			return nil, fmt.Errorf("load page seo: %w", err)
		}
		source = SEOSourceDefault
	}

	var view *SEOView
	if row != nil {
		view = &SEOView{
			Title:       row.Title,
			Description: row.Description,
			Keywords:    row.Keywords,
			OGImage:     row.OGImage,
			Source:      source,
		}
	} else {
		view, err = s.generated(ctx, locale, page)
		if err != nil {
			return nil, err
		}
	}
	view.Page = page
	view.Locale = locale.String()
	if view.OGImage == "" {
		view.OGImage = s.ogImageURL(locale, page)
	}
	view.Alternates = s.alternates(pagePath(page))
	return view, nil
}

// generated builds metadata from the company name and tagline.
func (s *seoService) generated(ctx context.Context, locale i18n.Locale, page string) (*SEOView, error) {
	row, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	pub := publicSettings(row, locale)
	title := pub.CompanyName
	if page != "home" {
		key := "nav." + page
		if tr := s.content.Translator(); tr != nil && tr.Has(locale, key) {
			title = s.content.T(ctx, locale, key, nil) + " | " + pub.CompanyName
		}
	}
	return &SEOView{
		Title:       title,
		Description: pub.Tagline,
		Source:      SEOSourceGenerated,
	}, nil
}

func (s *seoService) ogImageURL(locale i18n.Locale, page string) string {
	return fmt.Sprintf("%s/api/seo/%s/og.png?%s=%s", s.siteURL, url.PathEscape(page), i18n.LangParam, locale)
}

// pagePath maps a page key to its storefront path.
func pagePath(page string) string {
	switch {
	case page == "home":
		return ""
	case strings.HasPrefix(page, "product."):
		return "products/" + strings.TrimPrefix(page, "product.")
	case strings.HasPrefix(page, "blog."):
		return "blog/" + strings.TrimPrefix(page, "blog.")
	}
	return page
}

func (s *seoService) localeURL(locale i18n.Locale, path string) string {
	u := s.siteURL + "/" + locale.String()
	if path != "" {
		u += "/" + path
	}
	return u
}

func (s *seoService) alternates(path string) map[string]string {
	out := make(map[string]string, len(i18n.Supported()))
	for _, l := range i18n.Supported() {
		out[l.String()] = s.localeURL(l, path)
	}
	return out
}

func (s *seoService) OGImage(ctx context.Context, locale i18n.Locale, page string) ([]byte, error) {
	view, err := s.Get(ctx, locale, page)
	if err != nil {
		return nil, err
	}
	row, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	pub := publicSettings(row, locale)
	card := OGCard{
		Title:    view.Title,
		Subtitle: view.Description,
		Brand:    pub.CompanyName,
		Colors:   pub.Theme,
		RTL:      locale.Dir() == "rtl",
	}
	if slug, ok := strings.CutPrefix(page, "product."); ok {
		card.Background = s.productBackground(ctx, slug)
	}
	return s.renderer.Render(card)
}

// productBackground loads the first product image; failures fall back to a plain card.
func (s *seoService) productBackground(ctx context.Context, slug string) image.Image {
	if s.media == nil {
		return nil
	}
	p, err := s.productRepo.GetBySlug(dbctx.Context{Ctx: ctx}, slug)
	if err != nil || p == nil || !p.Published || len(p.Images) == 0 {
		return nil
	}
	rc, err := s.media.OpenURL(ctx, p.Images[0])
	if err != nil {
		s.log.Debug("Skipping og background", "product", slug, "error", err)
		return nil
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		s.log.Warn("Undecodable product image", "product", slug, "error", err)
		return nil
	}
	return img
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string             `xml:"loc"`
	LastMod    string             `xml:"lastmod,omitempty"`
	Alternates []sitemapAlternate `xml:"xhtml:link"`
}

type sitemapAlternate struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

func (s *seoService) Sitemap(ctx context.Context) ([]byte, error) {
	def := s.settings.DefaultLocale(ctx)
	set := sitemapURLSet{Xmlns: sitemapNS, XHTML: sitemapXHTMLNS}

	add := func(path string, lastMod time.Time) {
		alts := make([]sitemapAlternate, 0, len(i18n.Supported())+1)
		for _, l := range i18n.Supported() {
			alts = append(alts, sitemapAlternate{Rel: "alternate", Hreflang: l.String(), Href: s.localeURL(l, path)})
		}
		alts = append(alts, sitemapAlternate{Rel: "alternate", Hreflang: "x-default", Href: s.localeURL(def, path)})
		mod := ""
		if !lastMod.IsZero() {
			mod = lastMod.UTC().Format("2006-01-02")
		}
		for _, l := range i18n.Supported() {
			set.URLs = append(set.URLs, sitemapURL{Loc: s.localeURL(l, path), LastMod: mod, Alternates: alts})
		}
	}

	for _, p := range staticPages {
		add(p, time.Time{})
	}

	dbc := dbctx.Context{Ctx: ctx}
	for offset := 0; ; offset += sitemapBatch {
		products, _, err := s.productRepo.List(dbc, repos.ProductFilter{PublishedOnly: true, Limit: sitemapBatch, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		for _, p := range products {
			add("products/"+p.Slug, p.UpdatedAt)
		}
		if len(products) < sitemapBatch {
			break
		}
	}
	for offset := 0; ; offset += sitemapBatch {
		posts, _, err := s.blogRepo.List(dbc, repos.BlogFilter{PublishedOnly: true, Now: s.now(), Limit: sitemapBatch, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		for _, p := range posts {
			add("blog/"+p.Slug, p.UpdatedAt)
		}
		if len(posts) < sitemapBatch {
			break
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (s *seoService) AdminList(ctx context.Context, page string) ([]*types.PageSEO, error) {
	rows, err := s.repo.List(dbctx.Context{Ctx: ctx}, strings.ToLower(strings.TrimSpace(page)))
	if err != nil {
		return nil, fmt.Errorf("list page seo: %w", err)
	}
	if rows == nil {
		rows = []*types.PageSEO{}
	}
	return rows, nil
}

func validatePageSEO(in *PageSEOInput) error {
	in.Page = strings.ToLower(strings.TrimSpace(in.Page))
	in.Locale = strings.ToLower(strings.TrimSpace(in.Locale))
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Keywords = strings.TrimSpace(in.Keywords)
	in.OGImage = strings.TrimSpace(in.OGImage)

	var v validation.Errors
	if v.Required("page", in.Page) && !seoPageRe.MatchString(in.Page) {
		v.Add("page", validation.CodeInvalid, nil)
	}
	if l, ok := i18n.ParseLocale(in.Locale); !ok || l.String() != in.Locale {
		v.Add("locale", validation.CodeLocale, nil)
	}
	if v.Required("title", in.Title) {
		v.MaxLength("title", in.Title, 120)
	}
	v.MaxLength("description", in.Description, 320)
	v.MaxLength("keywords", in.Keywords, 500)
	if in.OGImage != "" && !isHTTPURL(in.OGImage) {
		v.Add("og_image", validation.CodeInvalid, nil)
	}
	return v.Err()
}

func (s *seoService) Upsert(ctx context.Context, in PageSEOInput) (*types.PageSEO, error) {
	if err := validatePageSEO(&in); err != nil {
		return nil, err
	}
	row, err := s.repo.Upsert(dbctx.Context{Ctx: ctx}, &types.PageSEO{
		Page:        in.Page,
		Locale:      in.Locale,
		Title:       in.Title,
		Description: in.Description,
		Keywords:    in.Keywords,
		OGImage:     in.OGImage,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert page seo: %w", err)
	}
	s.log.Info("Page SEO saved", "page", in.Page, "locale", in.Locale)
	return row, nil
}

func (s *seoService) Delete(ctx context.Context, page, locale string) error {
	page = strings.ToLower(strings.TrimSpace(page))
	locale = strings.ToLower(strings.TrimSpace(locale))
	ok, err := s.repo.Delete(dbctx.Context{Ctx: ctx}, page, locale)
	if err != nil {
		return fmt.Errorf("delete page seo: %w", err)
	}
	if !ok {
		return apierr.NotFound(CodeNotFound, "page seo %s/%s not found", page, locale)
	}
	return nil
}
