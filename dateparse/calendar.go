package dateparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

var ErrFutureTimestamp = errors.New("timestamp is in the future")

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the number of calendar days from a to b, negative when b
// is on an earlier date. Both instants are read in a's location, so a DST
// transition in between does not shift the result.
func DaysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((db.Unix() - da.Unix()) / secondsPerDay)
}

// Elapsed formats the time between then and now as "1d 2h 3m 4s", dropping
// leading zero units. Sub-second precision is discarded.
func Elapsed(then, now time.Time) (string, error) {
	d, err := elapsed(then, now)
	if err != nil {
		return "", err
	}

	total := int64(d / time.Second)
	parts := []struct {
		n      int64
		suffix string
	}{
		{total / secondsPerDay, "d"},
		{total % secondsPerDay / 3600, "h"},
		{total % 3600 / 60, "m"},
		{total % 60, "s"},
	}

	var b strings.Builder
	for _, p := range parts {
		if b.Len() == 0 && p.n == 0 && p.suffix != "s" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", p.n, p.suffix)
	}
	return b.String(), nil
}

// ElapsedISO is Elapsed rendered as an ISO 8601 duration.
func ElapsedISO(then, now time.Time) (string, error) {
	d, err := elapsed(then, now)
	if err != nil {
		return "", err
	}
	return duration.Format(d), nil
}

func elapsed(then, now time.Time) (time.Duration, error) {
	if then.After(now) {
		return 0, fmt.Errorf("%w: %s is after %s", ErrFutureTimestamp,
			then.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	return now.Sub(then), nil
}
