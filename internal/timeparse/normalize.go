package timeparse

import (
	"strings"

	"golang.org/x/text/width"
)

// phraseReplacements maps time-of-day words to clock phrases. Words that contain
// another entry come first so each word is rewritten exactly once.
var phraseReplacements = []struct {
	word  string
	clock string
}{
	{"お昼", "12時00分"},
	{"深夜", "23時00分"},
	{"夕方", "18時00分"},
	{"朝", "9時00分"},
	{"昼", "12時00分"},
	{"夜", "21時00分"},
}

// Normalize trims the input, folds full-width digits to ASCII and replaces
// time-of-day words with their canonical clock phrase.
func Normalize(text string) string {
	s := width.Fold.String(strings.TrimSpace(text))
	for _, r := range phraseReplacements {
		s = strings.ReplaceAll(s, r.word, r.clock)
	}
	return s
}
