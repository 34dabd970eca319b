package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/number"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/mailer"
)

// Notifier queues outbound email for form submissions. Enqueue never blocks
// the request; delivery happens on the worker goroutines started by Start.
type Notifier interface {
	QuoteSubmitted(q *types.QuoteRequest)
	ContactReceived(m *types.ContactMessage)
	Start(ctx context.Context)
	Wait()
}

// MailerFactory builds a client from the SMTP settings current at send time.
type MailerFactory func(cfg mailer.Config) (mailer.Client, error)

type emailJob struct {
	quote   *types.QuoteRequest
	contact *types.ContactMessage
}

func (j emailJob) kind() string {
	if j.quote != nil {
		return "quote"
	}
	return "contact"
}

type emailNotifier struct {
	log       *logger.Logger
	settings  SettingsService
	content   ContentService
	newMailer MailerFactory
	metrics   *observability.Metrics
	queue     chan emailJob
	workers   int
	timeout   time.Duration
	wg        sync.WaitGroup
	startOnce sync.Once
}

func NewEmailNotifier(log *logger.Logger, settings SettingsService, content ContentService, newMailer MailerFactory, queueSize, workers int, metrics *observability.Metrics) Notifier {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 2
	}
	return &emailNotifier{
		log:       log.With("service", "EmailNotifier"),
		settings:  settings,
		content:   content,
		newMailer: newMailer,
		metrics:   metrics,
		queue:     make(chan emailJob, queueSize),
		workers:   workers,
		timeout:   2 * time.Minute,
	}
}

func (n *emailNotifier) QuoteSubmitted(q *types.QuoteRequest) {
	if q != nil {
		n.enqueue(emailJob{quote: q})
	}
}

func (n *emailNotifier) ContactReceived(m *types.ContactMessage) {
	if m != nil {
		n.enqueue(emailJob{contact: m})
	}
}

func (n *emailNotifier) enqueue(job emailJob) {
	select {
	case n.queue <- job:
		n.metrics.SetMailQueueDepth(len(n.queue))
	default:
		n.log.Warn("Email queue full; dropping notification")
		n.metrics.IncMailSent(job.kind(), "dropped")
	}
}

func (n *emailNotifier) Start(ctx context.Context) {
	n.startOnce.Do(func() {
		for i := 0; i < n.workers; i++ {
			n.wg.Add(1)
			go func() {
				defer n.wg.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case job := <-n.queue:
						n.metrics.SetMailQueueDepth(len(n.queue))
						n.process(ctx, job)
					}
				}
			}()
		}
		n.log.Info("Email notifier started", "workers", n.workers)
	})
}

func (n *emailNotifier) Wait() { n.wg.Wait() }

func (n *emailNotifier) process(parent context.Context, job emailJob) {
	ctx, cancel := context.WithTimeout(parent, n.timeout)
	defer cancel()

	row, err := n.settings.Get(ctx)
	if err != nil {
		n.log.Warn("Email skipped: settings unavailable", "error", err)
		return
	}
	client, err := n.newMailer(smtpConfig(row))
	if errors.Is(err, mailer.ErrNotConfigured) {
		n.log.Info("Email skipped: SMTP not configured")
		return
	}
	if err != nil {
		n.log.Warn("Email skipped: mailer init failed", "error", err)
		return
	}

	var msgs []mailer.Message
	switch {
	case job.quote != nil:
		msgs = n.quoteMessages(ctx, row, job.quote)
	case job.contact != nil:
		msgs = n.contactMessages(ctx, row, job.contact)
	}
	for _, m := range msgs {
		if err := client.Send(ctx, m); err != nil {
			n.log.Warn("Email send failed", "subject", m.Subject, "error", err)
			n.metrics.IncMailSent(job.kind(), "failed")
			continue
		}
		n.metrics.IncMailSent(job.kind(), "sent")
		n.log.Debug("Email sent", "subject", m.Subject)
	}
}

func smtpConfig(row *types.SiteSettings) mailer.Config {
	return mailer.Config{
		Host:     row.SMTPHost,
		Port:     row.SMTPPort,
		Username: row.SMTPUsername,
		Password: row.SMTPPassword,
		From:     row.SMTPFrom,
		FromName: row.CompanyName.Data().Get(row.DefaultLocale, i18n.DefaultLocale.String()),
	}
}

// companyInbox is where notifications land: notify_email, else the public email.
func companyInbox(row *types.SiteSettings) string {
	if v := strings.TrimSpace(row.NotifyEmail); v != "" {
		return v
	}
	return strings.TrimSpace(row.Email)
}

func (n *emailNotifier) quoteMessages(ctx context.Context, row *types.SiteSettings, q *types.QuoteRequest) []mailer.Message {
	var out []mailer.Message
	adminLocale := i18n.Locale(row.DefaultLocale).OrDefault(i18n.DefaultLocale)

	if inbox := companyInbox(row); inbox != "" {
		out = append(out, mailer.Message{
			To:      []mailer.Address{{Email: inbox}},
			ReplyTo: &mailer.Address{Email: q.Email, Name: q.FullName},
			Subject: n.content.T(ctx, adminLocale, "email.quote_notify.subject", map[string]any{
				"Reference": q.Reference,
				"Name":      q.FullName,
			}),
			Text: n.quoteSummary(ctx, adminLocale, q),
		})
	}

	locale := i18n.Locale(q.Locale).OrDefault(adminLocale)
	company := row.CompanyName.Data().Get(locale.String(), row.DefaultLocale)
	var body strings.Builder
	body.WriteString(n.content.T(ctx, locale, "email.quote_ack.greeting", map[string]any{"Name": q.FullName}))
	body.WriteString("\n\n")
	body.WriteString(n.content.T(ctx, locale, "email.quote_ack.body", nil))
	body.WriteString("\n\n")
	body.WriteString(n.content.T(ctx, locale, "email.quote_ack.items", nil))
	body.WriteString("\n")
	body.WriteString(n.itemLines(ctx, locale, q.Items))
	body.WriteString("\n")
	body.WriteString(n.content.T(ctx, locale, "email.quote_ack.signature", map[string]any{"Company": company}))
	out = append(out, mailer.Message{
		To:      []mailer.Address{{Email: q.Email, Name: q.FullName}},
		Subject: n.content.T(ctx, locale, "email.quote_ack.subject", map[string]any{"Reference": q.Reference}),
		Text:    body.String(),
	})
	if inbox := companyInbox(row); inbox != "" {
		out[len(out)-1].ReplyTo = &mailer.Address{Email: inbox, Name: company}
	}
	return out
}

func (n *emailNotifier) itemLines(ctx context.Context, locale i18n.Locale, items []types.QuoteItem) string {
	p := n.content.Translator().Printer(locale)
	var b strings.Builder
	for _, it := range items {
		qty := p.Sprint(number.Decimal(it.Quantity, number.MaxFractionDigits(2)))
		unit := n.content.T(ctx, locale, "unit."+string(it.Unit), nil)
		fmt.Fprintf(&b, "- %s: %s %s", it.ProductName, qty, unit)
		if it.Finish != "" {
			fmt.Fprintf(&b, ", %s", it.Finish)
		}
		if it.Dimensions != "" {
			fmt.Fprintf(&b, ", %s", it.Dimensions)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (n *emailNotifier) quoteSummary(ctx context.Context, locale i18n.Locale, q *types.QuoteRequest) string {
	var b strings.Builder
	line := func(k, v string) {
		if strings.TrimSpace(v) != "" {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	line("Reference", q.Reference)
	line("Name", q.FullName)
	line("Email", q.Email)
	line("Phone", q.Phone)
	line("Company", q.Company)
	line("Country", q.Country)
	line("Language", q.Locale)
	line("Project type", q.ProjectType)
	line("Destination", q.DestinationCountry)
	line("Timeline", q.Timeline)
	b.WriteString("\n")
	b.WriteString(n.itemLines(ctx, locale, q.Items))
	if q.Notes != "" {
		b.WriteString("\n")
		b.WriteString(q.Notes)
		b.WriteString("\n")
	}
	return b.String()
}

func (n *emailNotifier) contactMessages(ctx context.Context, row *types.SiteSettings, m *types.ContactMessage) []mailer.Message {
	inbox := companyInbox(row)
	if inbox == "" {
		n.log.Info("Contact notification skipped: no company inbox configured")
		return nil
	}
	adminLocale := i18n.Locale(row.DefaultLocale).OrDefault(i18n.DefaultLocale)
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", m.Name, m.Email)
	if m.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", m.Phone)
	}
	if m.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	}
	fmt.Fprintf(&b, "Language: %s\n\n%s\n", m.Locale, m.Message)
	return []mailer.Message{{
		To:      []mailer.Address{{Email: inbox}},
		ReplyTo: &mailer.Address{Email: m.Email, Name: m.Name},
		Subject: n.content.T(ctx, adminLocale, "email.contact_notify.subject", map[string]any{"Name": m.Name}),
		Text:    b.String(),
	}}
}
