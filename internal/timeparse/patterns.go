package timeparse

import (
	"regexp"
	"strconv"
	"time"
)

type pattern struct {
	name  string
	re    *regexp.Regexp
	build func(p *PatternStrategy, m []string, now time.Time) (time.Time, bool)
}

// Order matters: the first matching pattern wins.
var patterns = []pattern{
	{
		name: "tomorrow",
		re:   regexp.MustCompile(`^明日(?:の)?(\d{1,2})時(?:([0-5]?\d)分)?$`),
		build: func(p *PatternStrategy, m []string, now time.Time) (time.Time, bool) {
			hour, minute, ok := clock(m[1], m[2])
			if !ok {
				return time.Time{}, false
			}
			return p.at(now, 1, hour, minute), true
		},
	},
	{
		name: "today",
		re:   regexp.MustCompile(`^今日(?:の)?(\d{1,2})時(?:([0-5]?\d)分)?$`),
		build: func(p *PatternStrategy, m []string, now time.Time) (time.Time, bool) {
			hour, minute, ok := clock(m[1], m[2])
			if !ok {
				return time.Time{}, false
			}
			return p.next(now, hour, minute), true
		},
	},
	{
		// "9時", "9時に". Digits or 間 after 時 belong to the patterns below.
		name: "hour",
		re:   regexp.MustCompile(`^(\d{1,2})時(?:$|[^間\d])`),
		build: func(p *PatternStrategy, m []string, now time.Time) (time.Time, bool) {
			hour, minute, ok := clock(m[1], "")
			if !ok {
				return time.Time{}, false
			}
			return p.next(now, hour, minute), true
		},
	},
	{
		name: "hours later",
		re:   regexp.MustCompile(`^(\d{1,2})時間後$`),
		build: func(_ *PatternStrategy, m []string, now time.Time) (time.Time, bool) {
			hours, _ := strconv.Atoi(m[1])
			return now.Add(time.Duration(hours) * time.Hour), true
		},
	},
	{
		name: "minutes later",
		re:   regexp.MustCompile(`^(\d{1,2})分後$`),
		build: func(_ *PatternStrategy, m []string, now time.Time) (time.Time, bool) {
			minutes, _ := strconv.Atoi(m[1])
			return now.Add(time.Duration(minutes) * time.Minute), true
		},
	},
	{
		name: "clock",
		re:   regexp.MustCompile(`^(\d{1,2})時(\d{1,2})分$`),
		build: func(p *PatternStrategy, m []string, now time.Time) (time.Time, bool) {
			hour, minute, ok := clock(m[1], m[2])
			if !ok {
				return time.Time{}, false
			}
			return p.next(now, hour, minute), true
		},
	},
}

// PatternStrategy matches a fixed table of anchored Japanese time patterns.
type PatternStrategy struct {
	loc *time.Location
}

func NewPatternStrategy(loc *time.Location) *PatternStrategy {
	return &PatternStrategy{loc: loc}
}

func (p *PatternStrategy) Name() string { return "pattern" }

func (p *PatternStrategy) Resolve(text string, now time.Time) (time.Time, bool) {
	for _, pat := range patterns {
		m := pat.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if t, ok := pat.build(p, m, now); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Anchors reports whether text has the shape of a table pattern, whether or
// not its values are in range.
func (p *PatternStrategy) Anchors(text string) bool {
	for _, pat := range patterns {
		if pat.re.MatchString(text) {
			return true
		}
	}
	return false
}

// at returns hour:minute local time, dayOffset days after now's local date.
func (p *PatternStrategy) at(now time.Time, dayOffset, hour, minute int) time.Time {
	local := now.In(p.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+dayOffset, hour, minute, 0, 0, p.loc)
}

// next returns today's hour:minute, or tomorrow's if that is not after now.
func (p *PatternStrategy) next(now time.Time, hour, minute int) time.Time {
	t := p.at(now, 0, hour, minute)
	if !t.After(now) {
		t = p.at(now, 1, hour, minute)
	}
	return t
}

func clock(hourStr, minuteStr string) (int, int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
