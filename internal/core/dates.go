package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const ymdLayout = "2006-01-02"

// ErrBadDate reports a date string that is not well-formed YYYY-MM-DD.
var ErrBadDate = errors.New("malformed date, want YYYY-MM-DD")

// ToYMD formats a calendar date as zero-padded YYYY-MM-DD using the date's
// local calendar fields. No timezone conversion: the value is a wall-clock
// date, not an instant.
func ToYMD(t time.Time) string {
	return t.Format(ymdLayout)
}

// YearOf parses the 4-digit year component of a YYYY-MM-DD string.
// Input is assumed well-formed (the parsed-record invariant).
func YearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, _ := strconv.Atoi(date[:4])
	return y
}

// ParseYMD parses a YYYY-MM-DD string as a local calendar date.
func ParseYMD(date string) (time.Time, error) {
	t, err := time.ParseInLocation(ymdLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	return t, nil
}

// SettlementKey returns the date of the Sunday that closes the settlement
// week containing the given date: the date itself when it is a Sunday,
// otherwise the next Sunday. Month and year rollover fall out of calendar
// arithmetic, so a Saturday Dec 31 keys into January of the next year.
func SettlementKey(date string) (string, error) {
	t, err := ParseYMD(date)
	if err != nil {
		return "", err
	}
	add := (7 - int(t.Weekday())) % 7 // Sunday is weekday 0
	return ToYMD(t.AddDate(0, 0, add)), nil
}

// SettlementRange returns the Monday-Sunday date pair spanning the
// settlement week identified by weekEnd. Display only.
func SettlementRange(weekEnd string) (start, end string, err error) {
	t, err := ParseYMD(weekEnd)
	if err != nil {
		return "", "", err
	}
	return ToYMD(t.AddDate(0, 0, -6)), weekEnd, nil
}
