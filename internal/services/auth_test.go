package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/ctxutil"
)

func newAuthService(t *testing.T, st *testStack) *authService {
	t.Helper()
	svc := NewAuthService(st.db, st.log,
		repos.NewAdminUserRepo(st.db, st.log),
		repos.NewUserTokenRepo(st.db, st.log),
		"test-secret", 15*time.Minute, 24*time.Hour)
	return svc.(*authService)
}

func wantUnauthorized(t *testing.T, err error) {
	t.Helper()
	if ae, ok := apierr.As(err); !ok || ae.Status != 401 {
		t.Fatalf("want 401, got %v", err)
	}
}

func TestAuthCreateAdmin(t *testing.T) {
	st := newTestStack(t)
	svc := newAuthService(t, st)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, CreateAdminInput{Email: "x", Password: "short", Role: "owner"})
	codes := fieldCodes(t, err)
	for _, f := range []string{"email", "name", "password", "role"} {
		if codes[f] == "" {
			t.Fatalf("missing %s in %v", f, codes)
		}
	}

	u, err := svc.CreateAdmin(ctx, CreateAdminInput{Email: " Owner@Marmora.Example ", Password: "correct horse", Name: "Owner"})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if u.Email != "owner@marmora.example" || u.Role != types.RoleAdmin || u.Password == "correct horse" {
		t.Fatalf("created admin: %+v", u)
	}
	_, err = svc.CreateAdmin(ctx, CreateAdminInput{Email: "owner@marmora.example", Password: "another password", Name: "Dup"})
	if ae, ok := apierr.As(err); !ok || ae.Status != 409 {
		t.Fatalf("duplicate email: want 409, got %v", err)
	}
}

func TestAuthLoginTokenAndLogout(t *testing.T) {
	st := newTestStack(t)
	svc := newAuthService(t, st)
	ctx := context.Background()
	if _, err := svc.CreateAdmin(ctx, CreateAdminInput{Email: "ed@marmora.example", Password: "editor-password", Name: "Ed", Role: types.RoleEditor}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	_, err := svc.Login(ctx, "ed@marmora.example", "wrong-password")
	wantUnauthorized(t, err)
	_, err = svc.Login(ctx, "nobody@marmora.example", "editor-password")
	wantUnauthorized(t, err)

	pair, err := svc.Login(ctx, "ED@marmora.example", "editor-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn != int64((15*time.Minute).Seconds()) {
		t.Fatalf("pair: %+v", pair)
	}

	// a second session is allowed
	second, err := svc.Login(ctx, "ed@marmora.example", "editor-password")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}

	authed, err := svc.SetContextFromToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(authed)
	if rd == nil || rd.Role != string(types.RoleEditor) || rd.RefreshToken != pair.RefreshToken {
		t.Fatalf("request data: %+v", rd)
	}
	me, err := svc.Me(authed)
	if err != nil || me.Email != "ed@marmora.example" {
		t.Fatalf("Me: %+v err=%v", me, err)
	}

	if err := svc.Logout(authed); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	_, err = svc.SetContextFromToken(ctx, pair.AccessToken)
	wantUnauthorized(t, err)
	if _, err := svc.SetContextFromToken(ctx, second.AccessToken); err != nil {
		t.Fatalf("other session revoked by logout: %v", err)
	}

	_, err = svc.SetContextFromToken(ctx, "not-a-jwt")
	wantUnauthorized(t, err)
}

func TestAuthRefreshRotatesAndExpires(t *testing.T) {
	st := newTestStack(t)
	svc := newAuthService(t, st)
	ctx := context.Background()
	if _, err := svc.CreateAdmin(ctx, CreateAdminInput{Email: "a@marmora.example", Password: "admin-password", Name: "A"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	pair, err := svc.Login(ctx, "a@marmora.example", "admin-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh token not rotated")
	}
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	wantUnauthorized(t, err)
	_, err = svc.SetContextFromToken(ctx, pair.AccessToken)
	wantUnauthorized(t, err)

	// jump past the refresh TTL
	base := time.Now()
	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	_, err = svc.Refresh(ctx, next.RefreshToken)
	wantUnauthorized(t, err)
	svc.now = time.Now
	_, err = svc.Refresh(ctx, next.RefreshToken)
	wantUnauthorized(t, err)

	_, err = svc.Refresh(ctx, "")
	wantUnauthorized(t, err)
}
