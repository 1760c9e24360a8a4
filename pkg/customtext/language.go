package customtext

import (
	"fmt"

	"golang.org/x/text/language"
)

// ParseLanguage parses a BCP-47 tag and returns its canonical form.
func ParseLanguage(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", s, err)
	}
	if tag == language.Und {
		return language.Und, fmt.Errorf("invalid language %q", s)
	}
	return tag, nil
}
