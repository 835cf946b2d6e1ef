package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale identifies one of the supported display languages.
type Locale string

const (
	// Arabic is the primary locale.
	Arabic Locale = "ar"
	// English is the secondary locale.
	English Locale = "en"
)

// DefaultLocale is used when no preference is given.
const DefaultLocale = Arabic

// Locales lists the supported locales, primary first.
var Locales = []Locale{Arabic, English}

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

// ParseLocale accepts "ar", "en" or any BCP 47 tag that matches one of them
// ("en-GB", "ar-EG"). Unsupported tags are an error.
func ParseLocale(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLocale, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", s, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("unsupported locale %q (want ar or en)", s)
	}
	return Locales[idx], nil
}

// MatchAcceptLanguage picks the best supported locale for an HTTP
// Accept-Language header, falling back to def.
func MatchAcceptLanguage(header string, def Locale) Locale {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return def
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return def
	}
	return Locales[idx]
}

// Other returns the alternate locale, used as a translation fallback.
func (l Locale) Other() Locale {
	if l == English {
		return Arabic
	}
	return English
}

// Text is a string translated into each supported locale.
type Text map[Locale]string

// Get returns the translation for loc, or the other locale's text when
// loc has none.
func (t Text) Get(loc Locale) string {
	if s := t[loc]; s != "" {
		return s
	}
	return t[loc.Other()]
}

// Complete reports whether every supported locale has a translation.
func (t Text) Complete() bool {
	for _, l := range Locales {
		if strings.TrimSpace(t[l]) == "" {
			return false
		}
	}
	return true
}
