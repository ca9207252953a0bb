package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = FixedZone(DefaultOffsetHours)

func assertSameInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s, got %s", want.UTC(), got.UTC())
}

type stubStrategy struct {
	name   string
	result time.Time
	ok     bool
	panics bool
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(text string, now time.Time) (time.Time, bool) {
	s.calls++
	if s.panics {
		panic("grammar exploded")
	}
	return s.result, s.ok
}

// resolvers returns the bare pattern table and the production chain. Table
// inputs must resolve the same way through both.
func resolvers() map[string]*Resolver {
	return map[string]*Resolver{
		"pattern": NewResolver(NewPatternStrategy(jst)),
		"default": NewDefaultResolver(jst),
	}
}

func TestResolver_Patterns(t *testing.T) {
	morning := time.Date(2024, 1, 1, 10, 0, 0, 0, jst)
	evening := time.Date(2024, 1, 1, 19, 0, 0, 0, jst)

	tests := []struct {
		name  string
		input string
		now   time.Time
		want  time.Time
	}{
		{"minutes later", "30分後", morning, morning.Add(30 * time.Minute)},
		{"hours later", "1時間後", morning, morning.Add(time.Hour)},
		{"tomorrow hour", "明日9時", morning, time.Date(2024, 1, 2, 9, 0, 0, 0, jst)},
		{"tomorrow with particle and minutes", "明日の9時30分", morning, time.Date(2024, 1, 2, 9, 30, 0, 0, jst)},
		{"today before the hour", "今日18時", morning, time.Date(2024, 1, 1, 18, 0, 0, 0, jst)},
		{"today after the hour rolls over", "今日18時", evening, time.Date(2024, 1, 2, 18, 0, 0, 0, jst)},
		{"today at the exact instant rolls over", "今日18時", time.Date(2024, 1, 1, 18, 0, 0, 0, jst), time.Date(2024, 1, 2, 18, 0, 0, 0, jst)},
		{"hour only still ahead", "11時", morning, time.Date(2024, 1, 1, 11, 0, 0, 0, jst)},
		{"hour only already passed", "9時", morning, time.Date(2024, 1, 2, 9, 0, 0, 0, jst)},
		{"hour with trailing particle", "15時に", morning, time.Date(2024, 1, 1, 15, 0, 0, 0, jst)},
		{"hour and minute", "18時30分", morning, time.Date(2024, 1, 1, 18, 30, 0, 0, jst)},
		{"hour and minute passed", "8時05分", morning, time.Date(2024, 1, 2, 8, 5, 0, 0, jst)},
		{"month rollover", "明日9時", time.Date(2024, 1, 31, 10, 0, 0, 0, jst), time.Date(2024, 2, 1, 9, 0, 0, 0, jst)},
		{"full width digits", "３０分後", morning, morning.Add(30 * time.Minute)},
		{"surrounding whitespace", "  1時間後 ", morning, morning.Add(time.Hour)},
	}

	for name, resolver := range resolvers() {
		for _, tc := range tests {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				got, ok := resolver.Resolve(tc.input, tc.now)
				require.True(t, ok)
				assertSameInstant(t, tc.want, got)
				assert.Equal(t, time.UTC, got.Location())
			})
		}
	}
}

func TestResolver_TimeOfDayWords(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, jst)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"明日の朝", time.Date(2024, 1, 2, 9, 0, 0, 0, jst)},
		{"明日の昼", time.Date(2024, 1, 2, 12, 0, 0, 0, jst)},
		{"明日のお昼", time.Date(2024, 1, 2, 12, 0, 0, 0, jst)},
		{"明日の夕方", time.Date(2024, 1, 2, 18, 0, 0, 0, jst)},
		{"明日の夜", time.Date(2024, 1, 2, 21, 0, 0, 0, jst)},
		{"明日の深夜", time.Date(2024, 1, 2, 23, 0, 0, 0, jst)},
		{"今日の夜", time.Date(2024, 1, 1, 21, 0, 0, 0, jst)},
		{"今日の朝", time.Date(2024, 1, 2, 9, 0, 0, 0, jst)},
		{"夕方", time.Date(2024, 1, 1, 18, 0, 0, 0, jst)},
		{"お昼", time.Date(2024, 1, 1, 12, 0, 0, 0, jst)},
		{"朝", time.Date(2024, 1, 2, 9, 0, 0, 0, jst)},
	}

	for name, resolver := range resolvers() {
		for _, tc := range tests {
			t.Run(name+"/"+tc.input, func(t *testing.T) {
				got, ok := resolver.Resolve(tc.input, now)
				require.True(t, ok)
				assertSameInstant(t, tc.want, got)
			})
		}
	}
}

func TestDefaultResolver_TodayTimesStayToday(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, jst)
	resolver := NewDefaultResolver(jst)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"18時", time.Date(2024, 1, 1, 18, 0, 0, 0, jst)},
		{"18時30分", time.Date(2024, 1, 1, 18, 30, 0, 0, jst)},
		{"20時30分", time.Date(2024, 1, 1, 20, 30, 0, 0, jst)},
		{"10時05分", time.Date(2024, 1, 1, 10, 5, 0, 0, jst)},
		{"10時", time.Date(2024, 1, 2, 10, 0, 0, 0, jst)},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := resolver.Resolve(tc.input, now)
			require.True(t, ok)
			assertSameInstant(t, tc.want, got)
		})
	}
}

func TestResolver_IgnoresHostTimezone(t *testing.T) {
	// 01:00 UTC is 10:00 in UTC+9.
	now := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)

	for name, resolver := range resolvers() {
		t.Run(name, func(t *testing.T) {
			got, ok := resolver.Resolve("明日9時", now)

			require.True(t, ok)
			assertSameInstant(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)
			assert.Equal(t, 0, got.Hour())
		})
	}
}

func TestResolver_Unresolved(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, jst)
	resolver := NewResolver(NewPatternStrategy(jst))

	inputs := []string{
		"",
		"   ",
		"無効な入力です",
		"よろしく",
		"25時",
		"明日24時",
		"10時60分",
		"123分後",
		"明日",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, ok := resolver.Resolve(input, now)
			assert.False(t, ok)
			assert.True(t, got.IsZero())
		})
	}
}

func TestDefaultResolver_Unresolved(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, jst)
	resolver := NewDefaultResolver(jst)

	inputs := []string{
		"",
		"   ",
		"無効な入力です",
		"よろしく",
		"1",
		"5",
		"12",
		"30",
		"2030",
		"25時",
		"明日24時",
		"10時60分",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, ok := resolver.Resolve(input, now)
			assert.False(t, ok)
			assert.True(t, got.IsZero())
		})
	}
}

func TestResolver_StrategyChain(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, jst)

	t.Run("first success wins", func(t *testing.T) {
		first := &stubStrategy{name: "first", result: now.Add(time.Hour), ok: true}
		second := &stubStrategy{name: "second", result: now.Add(2 * time.Hour), ok: true}

		got, ok := NewResolver(first, second).Resolve("whatever", now)

		require.True(t, ok)
		assertSameInstant(t, now.Add(time.Hour), got)
		assert.Equal(t, 0, second.calls)
	})

	t.Run("falls through on failure", func(t *testing.T) {
		first := &stubStrategy{name: "first"}
		second := &stubStrategy{name: "second", result: now.Add(2 * time.Hour), ok: true}

		got, ok := NewResolver(first, second).Resolve("whatever", now)

		require.True(t, ok)
		assertSameInstant(t, now.Add(2*time.Hour), got)
		assert.Equal(t, 1, first.calls)
	})

	t.Run("panicking strategy is treated as no result", func(t *testing.T) {
		broken := &stubStrategy{name: "broken", panics: true}

		assert.NotPanics(t, func() {
			got, ok := NewResolver(broken, NewPatternStrategy(jst)).Resolve("30分後", now)
			require.True(t, ok)
			assertSameInstant(t, now.Add(30*time.Minute), got)
		})
	})

	t.Run("panicking only strategy yields unresolved", func(t *testing.T) {
		broken := &stubStrategy{name: "broken", panics: true}

		_, ok := NewResolver(broken).Resolve("30分後", now)

		assert.False(t, ok)
	})

	t.Run("empty input skips strategies", func(t *testing.T) {
		s := &stubStrategy{name: "s", result: now, ok: true}

		_, ok := NewResolver(s).Resolve("  ", now)

		assert.False(t, ok)
		assert.Equal(t, 0, s.calls)
	})
}

func TestNaturalStrategy(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, jst)
	s := NewNaturalStrategy(jst)

	t.Run("resolves tomorrow into the future", func(t *testing.T) {
		got, ok := s.Resolve("明日", now)
		require.True(t, ok)
		assert.True(t, got.After(now))
		assert.True(t, got.Before(now.Add(48*time.Hour)))
	})

	t.Run("empty text is not a date", func(t *testing.T) {
		_, ok := s.Resolve("", now)
		assert.False(t, ok)
	})

	t.Run("bare numbers are not dates", func(t *testing.T) {
		for _, input := range []string{"1", "12", "30", "2112"} {
			_, ok := s.Resolve(input, now)
			assert.False(t, ok, input)
		}
	})

	t.Run("anchored input is left to the table", func(t *testing.T) {
		var seen []string
		deferring := NewNaturalStrategy(jst).DeferTo(func(text string) bool {
			seen = append(seen, text)
			return true
		})

		_, ok := deferring.Resolve("明日", now)

		assert.False(t, ok)
		assert.Equal(t, []string{"明日"}, seen)
	})
}

func TestPatternStrategy_Anchors(t *testing.T) {
	p := NewPatternStrategy(jst)

	assert.True(t, p.Anchors("18時30分"))
	assert.True(t, p.Anchors("25時"))
	assert.True(t, p.Anchors("明日の9時"))
	assert.False(t, p.Anchors("来週月曜日"))
	assert.False(t, p.Anchors("123分後"))
}
