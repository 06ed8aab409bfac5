package engine

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// WeeklyAnchor is the weekday on which the Weekly bucket rolls over.
const WeeklyAnchor = time.Monday

// DateKey formats t as a calendar day in t's location.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDateKey parses a calendar day in loc.
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ResetDue reports whether bucket b should be regenerated. An empty bucket
// always regenerates.
func ResetDue(b Bucket, lastReset string, now time.Time, quests []Quest) bool {
	if len(quests) == 0 {
		return true
	}
	today := DateKey(now)
	if lastReset == today {
		return false
	}
	switch b {
	case BucketDaily:
		return true
	case BucketWeekly:
		return now.Weekday() == WeeklyAnchor
	case BucketEvent:
		for _, q := range quests {
			if !q.Terminal() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// NextReset returns the earliest time at which b may roll over after now.
// Event buckets roll over once every quest is settled, so the result is only
// a lower bound for them.
func NextReset(b Bucket, now time.Time) (time.Time, error) {
	midnight := startOfDay(now).AddDate(0, 0, 1)
	switch b {
	case BucketDaily, BucketEvent:
		return midnight, nil
	case BucketWeekly:
		days := (int(WeeklyAnchor) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return startOfDay(now).AddDate(0, 0, days), nil
	default:
		return time.Time{}, fmt.Errorf("invalid bucket: %q", b)
	}
}
