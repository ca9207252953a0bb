package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"明日の朝", "明日の9時00分"},
		{"お昼", "12時00分"},
		{"昼", "12時00分"},
		{"夕方", "18時00分"},
		{"夜", "21時00分"},
		{"深夜", "23時00分"},
		{"朝と夜", "9時00分と21時00分"},
		{"  今日18時  ", "今日18時"},
		{"１８時３０分", "18時30分"},
		{"30分後", "30分後"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestFormatLocal(t *testing.T) {
	instant := time.Date(2024, 1, 2, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, "2024年1月2日 9時05分", FormatLocal(instant, jst))
}

func TestFixedZone(t *testing.T) {
	loc := FixedZone(9)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9*60*60, offset)
}
