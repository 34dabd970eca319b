package services

import (
	"context"
	"testing"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

func TestContactSubmitAndInbox(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	n := &fakeNotifier{}
	svc := NewContactService(st.db, st.log, repos.NewContactMessageRepo(st.db, st.log), fakeGuard{}, n, st.settings)

	m, err := svc.Submit(ctx, ContactInput{
		Name:    " Jean Dupont ",
		Email:   "jean@example.fr",
		Subject: "Samples",
		Message: "Could you ship two samples of Sunny Menia?",
	}, SubmitMeta{Locale: i18n.French, ClientIP: "198.51.100.4"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if m.Name != "Jean Dupont" || m.Locale != "fr" || m.ClientIP != "198.51.100.4" {
		t.Fatalf("stored message: %+v", m)
	}
	if len(n.contacts) != 1 {
		t.Fatalf("notifier not called")
	}

	unread, err := svc.CountUnread(ctx)
	if err != nil || unread != 1 {
		t.Fatalf("CountUnread: %d err=%v", unread, err)
	}
	read, err := svc.MarkRead(ctx, m.ID)
	if err != nil || read.ReadAt == nil {
		t.Fatalf("MarkRead: %+v err=%v", read, err)
	}
	page, err := svc.List(ctx, ContactListQuery{UnreadOnly: true})
	if err != nil || page.Total != 0 {
		t.Fatalf("unread list after MarkRead: %+v err=%v", page, err)
	}
	page, _ = svc.List(ctx, ContactListQuery{})
	if page.Total != 1 {
		t.Fatalf("full list: %d", page.Total)
	}

	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.MarkRead(ctx, m.ID); err == nil {
		t.Fatalf("MarkRead after delete: want error")
	} else if ae, ok := apierr.As(err); !ok || ae.Status != 404 {
		t.Fatalf("MarkRead after delete: want 404, got %v", err)
	}
}

func TestValidateContact(t *testing.T) {
	long := make([]byte, maxContactMessage+1)
	for i := range long {
		long[i] = 'x'
	}
	v := ValidateContact(ContactInput{Name: "", Email: "bad", Phone: "abc", Message: string(long)})
	got := map[string]string{}
	for _, f := range v.List() {
		got[f.Field] = f.Code
	}
	want := map[string]string{
		"name":    validation.CodeRequired,
		"message": validation.CodeMaxLength,
	}
	for f, c := range want {
		if got[f] != c {
			t.Fatalf("%s: got=%q want=%q", f, got[f], c)
		}
	}
	if got["email"] == "" || got["phone"] == "" {
		t.Fatalf("email/phone not flagged: %v", got)
	}

	// phone is optional on the contact form
	v = ValidateContact(ContactInput{Name: "A", Email: "a@b.co", Message: "hi"})
	if !v.Empty() {
		t.Fatalf("valid input rejected: %v", v.List())
	}
}
