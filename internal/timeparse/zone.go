package timeparse

import (
	"fmt"
	"time"
)

// DefaultOffsetHours is the local civil offset used to read wall-clock input (JST).
const DefaultOffsetHours = 9

// FixedZone returns a zone with a constant offset from UTC. Wall-clock values
// typed by users are read in this zone, independent of the host TZ.
func FixedZone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+03d:00", offsetHours), offsetHours*60*60)
}

// FormatLocal renders an instant as "2006年1月2日 15時04分" in loc.
func FormatLocal(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%d年%d月%d日 %d時%02d分",
		local.Year(), int(local.Month()), local.Day(), local.Hour(), local.Minute())
}
