package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestPatterns(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"email ok", IsEmail, "buyer@example.com", true},
		{"email no at", IsEmail, "buyer.example.com", false},
		{"email spaces", IsEmail, "bu yer@example.com", false},
		{"phone intl", IsPhone, "+20 (2) 555-1234", true},
		{"phone short", IsPhone, "12345", false},
		{"phone letters", IsPhone, "+20 555 ABCD", false},
		{"phone too long", IsPhone, "+123456789012345678901", false},
		{"slug ok", IsSlug, "nero-marquina-2", true},
		{"slug double hyphen", IsSlug, "nero--marquina", false},
		{"slug upper", IsSlug, "Nero", false},
		{"slug trailing hyphen", IsSlug, "nero-", false},
		{"color short", IsHexColor, "#fff", true},
		{"color long", IsHexColor, "#1F2937", true},
		{"color bad length", IsHexColor, "#1f29", false},
		{"color no hash", IsHexColor, "1f2937", false},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Errorf("%s: %q => %v want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestErrorsFirstPerFieldWins(t *testing.T) {
	var errs Errors
	errs.Email("email", "")
	errs.Email("email", "not-an-email")
	errs.MaxLength("notes", strings.Repeat("é", 2001), 2000)
	errs.MaxLength("ok", strings.Repeat("é", 2000), 2000)
	errs.Phone("phone", "", false)

	list := errs.List()
	if len(list) != 2 {
		t.Fatalf("want 2 errors, got %+v", list)
	}
	if list[0].Field != "email" || list[0].Code != CodeRequired {
		t.Fatalf("first error: %+v", list[0])
	}
	if list[1].Code != CodeMaxLength || list[1].Params["Max"] != 2000 {
		t.Fatalf("max length error: %+v", list[1])
	}

	err := errs.Err()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Err should return *Error, got %T", err)
	}
	msgs := verr.Localize(func(key string, data map[string]any) string { return "T(" + key + ")" })
	if msgs["email"] != "T(validation.required)" {
		t.Fatalf("Localize: %+v", msgs)
	}
}

func TestErrNilWhenEmpty(t *testing.T) {
	var errs Errors
	errs.HexColor("primary", "")
	errs.Phone("phone", "+1 555 123 4567", true)
	if err := errs.Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
