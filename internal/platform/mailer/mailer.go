package mailer

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/marmora-backend/internal/platform/httpx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

var ErrNotConfigured = errors.New("mailer: smtp not configured")

type Client interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	Timeout    time.Duration
	MaxRetries int
}

// Configured reports whether enough is set to attempt delivery.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.From) != ""
}

func (c Config) addr() string {
	port := c.Port
	if port <= 0 {
		port = 587
	}
	return net.JoinHostPort(strings.TrimSpace(c.Host), strconv.Itoa(port))
}

type Address struct {
	Email string
	Name  string
}

func (a Address) String() string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

type Message struct {
	From    Address
	ReplyTo *Address
	To      []Address
	Subject string
	Text    string
	HTML    string
	Headers map[string]string
}

// sendFunc delivers an already encoded message. Tests swap it out.
type sendFunc func(ctx context.Context, cfg Config, from string, to []string, raw []byte) error

type client struct {
	log        *logger.Logger
	cfg        Config
	send       sendFunc
	maxRetries int
	now        func() time.Time
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &client{
		log:        log.With("client", "SMTPClient"),
		cfg:        cfg,
		send:       smtpSend,
		maxRetries: cfg.MaxRetries,
		now:        time.Now,
	}, nil
}

func (c *client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.send == nil {
		return fmt.Errorf("smtp client unavailable")
	}
	if strings.TrimSpace(msg.From.Email) == "" {
		msg.From.Email = c.cfg.From
		if strings.TrimSpace(msg.From.Name) == "" {
			msg.From.Name = c.cfg.FromName
		}
	}
	msg.From.Email = strings.TrimSpace(msg.From.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)

	if msg.From.Email == "" {
		return fmt.Errorf("smtp: From.Email required")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp: To required")
	}
	if msg.Subject == "" {
		return fmt.Errorf("smtp: Subject required")
	}
	if strings.TrimSpace(msg.Text) == "" && strings.TrimSpace(msg.HTML) == "" {
		return fmt.Errorf("smtp: Text or HTML content required")
	}

	raw, err := Build(msg, c.now())
	if err != nil {
		return err
	}
	rcpts := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		rcpts = append(rcpts, strings.TrimSpace(a.Email))
	}

	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = c.send(ctx, c.cfg, msg.From.Email, rcpts, raw)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == c.maxRetries {
			return err
		}
		sleepFor := httpx.JitterSleep(backoff)
		c.log.Warn("SMTP send retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
	return errors.New("unreachable retry loop")
}

func retryable(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return httpx.IsRetryableSMTPCode(tpErr.Code)
	}
	return httpx.IsRetryableError(err)
}

// Build encodes msg as an RFC 5322 message. Both parts present gives
// multipart/alternative; bodies are quoted-printable UTF-8.
func Build(msg Message, at time.Time) ([]byte, error) {
	var buf bytes.Buffer
	h := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}

	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		if strings.TrimSpace(a.Email) == "" {
			return nil, fmt.Errorf("smtp: empty recipient")
		}
		to = append(to, a.String())
	}

	h("From", msg.From.String())
	h("To", strings.Join(to, ", "))
	if msg.ReplyTo != nil && strings.TrimSpace(msg.ReplyTo.Email) != "" {
		h("Reply-To", msg.ReplyTo.String())
	}
	h("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	h("Date", at.Format(time.RFC1123Z))
	h("Message-ID", messageID(msg.From.Email))
	h("MIME-Version", "1.0")
	for k, v := range msg.Headers {
		h(textproto.CanonicalMIMEHeaderKey(k), v)
	}

	text := strings.TrimSpace(msg.Text)
	html := strings.TrimSpace(msg.HTML)
	if text != "" && html != "" {
		mw := multipart.NewWriter(&buf)
		h("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
		buf.WriteString("\r\n")
		for _, part := range []struct{ ctype, body string }{
			{"text/plain; charset=utf-8", text},
			{"text/html; charset=utf-8", html},
		} {
			pw, err := mw.CreatePart(textproto.MIMEHeader{
				"Content-Type":              {part.ctype},
				"Content-Transfer-Encoding": {"quoted-printable"},
			})
			if err != nil {
				return nil, err
			}
			if err := writeQP(pw, part.body); err != nil {
				return nil, err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	ctype, body := "text/plain; charset=utf-8", text
	if text == "" {
		ctype, body = "text/html; charset=utf-8", html
	}
	h("Content-Type", ctype)
	h("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")
	if err := writeQP(&buf, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeQP(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	var b [12]byte
	_, _ = rand.Read(b[:])
	return "<" + hex.EncodeToString(b[:]) + "@" + domain + ">"
}

// smtpSend dials with a deadline, upgrades with STARTTLS when offered and
// authenticates when a username is set.
func smtpSend(ctx context.Context, cfg Config, from string, to []string, raw []byte) error {
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.addr())
	if err != nil {
		return err
	}
	deadline := time.Now().Add(cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	host := strings.TrimSpace(cfg.Host)
	var c *smtp.Client
	if cfg.Port == 465 {
		tconn := tls.Client(conn, &tls.Config{ServerName: host})
		c, err = smtp.NewClient(tconn, host)
	} else {
		c, err = smtp.NewClient(conn, host)
	}
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && cfg.Port != 465 {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if strings.TrimSpace(cfg.Username) != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, host)); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, r := range to {
		if err := c.Rcpt(r); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
