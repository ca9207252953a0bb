package timeparse

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// timeUnits are the characters an expression needs before the natural parser
// sees it. Bare numbers like "12" would otherwise parse as years.
const timeUnits = "時分秒日曜週月"

// NaturalStrategy parses free-form Japanese dates ("来週月曜日", "明日") with
// go-dateparser. Incomplete dates are filled from the current period; a result
// that is not after now counts as no result so the pattern table can roll it
// over to the next day.
type NaturalStrategy struct {
	loc    *time.Location
	parser *dateparser.Parser
	skip   func(string) bool
}

func NewNaturalStrategy(loc *time.Location) *NaturalStrategy {
	return &NaturalStrategy{
		loc: loc,
		parser: &dateparser.Parser{
			ParserTypes: []dateparser.ParserType{dateparser.RelativeTime, dateparser.AbsoluteTime},
		},
	}
}

// DeferTo makes the strategy skip inputs for which anchored returns true.
func (s *NaturalStrategy) DeferTo(anchored func(string) bool) *NaturalStrategy {
	s.skip = anchored
	return s
}

func (s *NaturalStrategy) Name() string { return "natural" }

func (s *NaturalStrategy) Resolve(text string, now time.Time) (time.Time, bool) {
	if !strings.ContainsAny(text, timeUnits) {
		return time.Time{}, false
	}
	if s.skip != nil && s.skip(text) {
		return time.Time{}, false
	}

	cfg := &dateparser.Configuration{
		Languages:           []string{"ja"},
		CurrentTime:         now.In(s.loc),
		DefaultTimezone:     s.loc,
		PreferredDateSource: dateparser.CurrentPeriod,
	}

	dt, err := s.parser.Parse(cfg, text)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}

	// A reminder in the past is never what the user meant.
	if !dt.Time.After(now) {
		return time.Time{}, false
	}

	return dt.Time, true
}
