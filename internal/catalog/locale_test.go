package catalog

import "testing"

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in      string
		want    Locale
		wantErr bool
	}{
		{"", Arabic, false},
		{"ar", Arabic, false},
		{"en", English, false},
		{"en-GB", English, false},
		{"ar-EG", Arabic, false},
		{"fr", "", true},
		{"!!", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLocale(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLocale(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLocale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	if got := MatchAcceptLanguage("en-US,en;q=0.9", Arabic); got != English {
		t.Errorf("got %q, want en", got)
	}
	if got := MatchAcceptLanguage("", English); got != English {
		t.Errorf("empty header: got %q, want default en", got)
	}
	if got := MatchAcceptLanguage("ja", Arabic); got != Arabic {
		t.Errorf("unsupported: got %q, want default ar", got)
	}
}

func TestText_GetFallsBackToOtherLocale(t *testing.T) {
	tx := Text{English: "Speed"}
	if got := tx.Get(Arabic); got != "Speed" {
		t.Errorf("Get(ar) = %q, want fallback to en", got)
	}
	if tx.Complete() {
		t.Error("Complete() = true for a single translation")
	}
}
