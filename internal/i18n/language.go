package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Lang is the language selected for an outgoing letter.
type Lang string

const (
	Korean  Lang = "ko"
	English Lang = "en"
	Both    Lang = "both"
)

// Detection thresholds on the Hangul share of counted letters.
const (
	koreanThreshold  = 0.25
	englishThreshold = 0.05
)

// Tags returns the locales rendered for l, primary first.
func (l Lang) Tags() []language.Tag {
	switch l {
	case Korean:
		return []language.Tag{language.Korean}
	case English:
		return []language.Tag{language.English}
	default:
		return []language.Tag{language.Korean, language.English}
	}
}

// Detect guesses the writer's language from free text. Only Hangul
// syllables and ASCII letters are counted; anything else is ignored.
func Detect(parts ...string) Lang {
	text := norm.NFC.String(strings.Join(parts, " "))

	var hangul, latin int
	for _, r := range text {
		switch {
		case r >= 0xAC00 && r <= 0xD7A3:
			hangul++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}

	total := hangul + latin
	if total == 0 {
		return Both
	}

	ratio := float64(hangul) / float64(total)
	switch {
	case ratio >= koreanThreshold:
		return Korean
	case ratio <= englishThreshold:
		return English
	default:
		return Both
	}
}
