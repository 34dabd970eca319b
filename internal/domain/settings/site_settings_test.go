package settings

import "testing"

func TestDefaultsCoverEveryLocale(t *testing.T) {
	s := Defaults()
	if s.ID != SingletonID {
		t.Fatalf("id: want=%d got=%d", SingletonID, s.ID)
	}
	name := s.CompanyName.Data()
	for _, loc := range []string{"ar", "en", "es", "fr"} {
		if !name.Has(loc) {
			t.Fatalf("company name missing locale %s", loc)
		}
	}
	if s.DefaultLocale != "en" {
		t.Fatalf("default locale: got=%q", s.DefaultLocale)
	}
}
