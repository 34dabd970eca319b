package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/mailer"
)

// testStack wires the services over one in-memory database. Service tests
// use the database directly: it has a single connection, so holding a
// testutil.Tx open while a service starts its own transaction would block.
type testStack struct {
	db       *gorm.DB
	log      *logger.Logger
	settings SettingsService
	content  ContentService
	catalog  CatalogService
	blog     BlogService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tr, err := i18n.NewTranslator(i18n.DefaultLocale, log)
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}
	settings := NewSettingsService(db, log, repos.NewSiteSettingsRepo(db, log), nil, nil)
	content := NewContentService(db, log, tr, repos.NewContentBlockRepo(db, log), settings, nil)
	return &testStack{
		db:       db,
		log:      log,
		settings: settings,
		content:  content,
		catalog:  NewCatalogService(db, log, repos.NewProductRepo(db, log), repos.NewCategoryRepo(db, log), content, settings),
		blog:     NewBlogService(db, log, repos.NewBlogPostRepo(db, log), settings),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

type fakeLimiter struct {
	allow bool
	retry time.Duration
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.retry, f.err
}

type fakeVerifier struct {
	err    error
	calls  int
	secret string
	token  string
}

func (f *fakeVerifier) Verify(_ context.Context, secret, token, _ string) error {
	f.calls++
	f.secret, f.token = secret, token
	return f.err
}

type fakeGuard struct{ err error }

func (f fakeGuard) Check(context.Context, string, string, string) error { return f.err }

type fakeNotifier struct {
	mu       sync.Mutex
	quotes   []*types.QuoteRequest
	contacts []*types.ContactMessage
}

func (f *fakeNotifier) QuoteSubmitted(q *types.QuoteRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, q)
}

func (f *fakeNotifier) ContactReceived(m *types.ContactMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, m)
}

func (f *fakeNotifier) Start(context.Context) {}
func (f *fakeNotifier) Wait()                 {}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}
