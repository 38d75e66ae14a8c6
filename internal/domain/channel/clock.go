package channel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day with minute precision, stored as minutes after midnight.
type ClockTime int

// Midnight is 00:00.
const Midnight ClockTime = 0

const minutesPerDay = 24 * 60

// ParseClockTime parses an "HH:MM" value.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidSendTime, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidSendTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidSendTime, s)
	}
	return ClockTime(hour*60 + minute), nil
}

// ParseClockTimes parses every value and returns them sorted and de-duplicated.
func ParseClockTimes(values []string) ([]ClockTime, error) {
	out := make([]ClockTime, 0, len(values))
	for _, v := range values {
		ct, err := ParseClockTime(v)
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return NormalizeClockTimes(out), nil
}

// NormalizeClockTimes sorts in place and drops duplicates.
func NormalizeClockTimes(times []ClockTime) []ClockTime {
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	out := times[:0]
	for i, t := range times {
		if i > 0 && t == times[i-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ClockOf returns the time of day of t in t's location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// NotAfter reports whether c is at or before the time of day of t.
func (c ClockTime) NotAfter(t time.Time) bool {
	return ClockOf(t) >= c
}

func (c ClockTime) String() string {
	m := int(c) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatClockTimes renders values as "HH:MM" strings.
func FormatClockTimes(times []ClockTime) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.String()
	}
	return out
}
