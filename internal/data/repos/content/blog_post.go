package content

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type BlogFilter struct {
	PublishedOnly bool
	// Now excludes posts scheduled after it when PublishedOnly is set.
	Now    time.Time
	Tag    string
	Limit  int
	Offset int
}

type BlogPostRepo interface {
	Create(dbc dbctx.Context, posts []*types.BlogPost) ([]*types.BlogPost, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.BlogPost, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.BlogPost, error)
	List(dbc dbctx.Context, f BlogFilter) ([]*types.BlogPost, int64, error)
	SlugExists(dbc dbctx.Context, slug string, excludeID uuid.UUID) (bool, error)
	Update(dbc dbctx.Context, post *types.BlogPost) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type blogPostRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlogPostRepo(db *gorm.DB, baseLog *logger.Logger) BlogPostRepo {
	repoLog := baseLog.With("repo", "BlogPostRepo")
	return &blogPostRepo{db: db, log: repoLog}
}

func (r *blogPostRepo) Create(dbc dbctx.Context, posts []*types.BlogPost) ([]*types.BlogPost, error) {
	if len(posts) == 0 {
		return []*types.BlogPost{}, nil
	}
	if err := dbc.DB(r.db).Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *blogPostRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.BlogPost, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *blogPostRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.BlogPost, error) {
	return r.first(dbc, "slug = ?", slug)
}

func (r *blogPostRepo) first(dbc dbctx.Context, where string, arg any) (*types.BlogPost, error) {
	var p types.BlogPost
	err := dbc.DB(r.db).Where(where, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *blogPostRepo) List(dbc dbctx.Context, f BlogFilter) ([]*types.BlogPost, int64, error) {
	q := dbc.DB(r.db).Model(&types.BlogPost{})
	if f.PublishedOnly {
		q = q.Where("published = ?", true)
		if !f.Now.IsZero() {
			q = q.Where("published_at IS NULL OR published_at <= ?", f.Now)
		}
	}
	if f.Tag != "" {
		q = q.Where(datatypes.JSONArrayQuery("tags").Contains(f.Tag))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("published_at DESC").Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.BlogPost
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *blogPostRepo) SlugExists(dbc dbctx.Context, slug string, excludeID uuid.UUID) (bool, error) {
	q := dbc.DB(r.db).Model(&types.BlogPost{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *blogPostRepo) Update(dbc dbctx.Context, post *types.BlogPost) error {
	if post == nil || post.ID == uuid.Nil {
		return errors.New("blog post id required")
	}
	return dbc.DB(r.db).Omit("created_at").Save(post).Error
}

func (r *blogPostRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.BlogPost{})
	return res.RowsAffected > 0, res.Error
}
