package structs

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

//*******************************************
// time
//*******************************************

// Time is given in seconds since local midnight.
type Time int32

const (
	INF_TIME       Time = math.MaxInt32
	MINUTE_SECONDS Time = 60
	HOUR_SECONDS   Time = 3600
	DAY_SECONDS    Time = 24 * HOUR_SECONDS
)

var ErrInvalidTime = errors.New("invalid time format")

// AddTime adds d to t and saturates at INF_TIME.
func AddTime(t, d Time) Time {
	if t == INF_TIME || d == INF_TIME {
		return INF_TIME
	}
	if t > INF_TIME-d {
		return INF_TIME
	}
	return t + d
}

func MinTime(a, b Time) Time {
	if a < b {
		return a
	}
	return b
}

type TimeFormat struct {
	// pad single digit hours with a zero
	LeadingZero bool
	// round to the nearest minute and omit seconds
	RoundSeconds bool
	// wrap times after midnight into the next day
	WrapDay bool
}

// FormatTime renders t as H:MM:SS or H:MM.
func FormatTime(t Time, format TimeFormat) string {
	if t == INF_TIME {
		return "inf"
	}
	if format.WrapDay {
		t %= DAY_SECONDS
	}
	if format.RoundSeconds {
		if seconds := t % MINUTE_SECONDS; seconds >= 30 {
			t += MINUTE_SECONDS - seconds
		}
	}

	var builder strings.Builder
	hours := t / HOUR_SECONDS
	if hours < 10 && format.LeadingZero {
		builder.WriteByte('0')
	}
	builder.WriteString(strconv.Itoa(int(hours)))
	builder.WriteByte(':')
	writeTwoDigits(&builder, int((t%HOUR_SECONDS)/MINUTE_SECONDS))
	if format.RoundSeconds {
		return builder.String()
	}
	builder.WriteByte(':')
	writeTwoDigits(&builder, int(t%MINUTE_SECONDS))
	return builder.String()
}

func writeTwoDigits(builder *strings.Builder, value int) {
	if value < 10 {
		builder.WriteByte('0')
	}
	builder.WriteString(strconv.Itoa(value))
}

func (self Time) String() string {
	return FormatTime(self, TimeFormat{})
}

// ParseTime parses a departure time given as H, HH, H:MM or HH:MM.
//
// Any non-digit character is accepted as separator.
func ParseTime(s string) (Time, error) {
	if len(s) == 0 || len(s) > 5 {
		return 0, ErrInvalidTime
	}
	if len(s) <= 2 {
		hours, ok := parseDigits(s)
		if !ok || hours >= 24 {
			return 0, ErrInvalidTime
		}
		return Time(hours) * HOUR_SECONDS, nil
	}
	if len(s) == 3 {
		return 0, ErrInvalidTime
	}
	sep := len(s) - 3
	if isDigit(s[sep]) {
		return 0, ErrInvalidTime
	}
	hours, ok := parseDigits(s[:sep])
	if !ok || hours >= 24 {
		return 0, ErrInvalidTime
	}
	minutes, ok := parseDigits(s[sep+1:])
	if !ok || minutes >= 60 {
		return 0, ErrInvalidTime
	}
	return Time(hours)*HOUR_SECONDS + Time(minutes)*MINUTE_SECONDS, nil
}

// ParseClock parses a schedule time H:MM:SS, hours may exceed 24.
func ParseClock(s string) (Time, error) {
	tokens := strings.Split(strings.TrimSpace(s), ":")
	if len(tokens) != 3 {
		return 0, ErrInvalidTime
	}
	hours, ok := parseDigits(tokens[0])
	if !ok {
		return 0, ErrInvalidTime
	}
	minutes, ok := parseDigits(tokens[1])
	if !ok || minutes >= 60 {
		return 0, ErrInvalidTime
	}
	seconds, ok := parseDigits(tokens[2])
	if !ok || seconds >= 60 {
		return 0, ErrInvalidTime
	}
	value := int64(hours)*int64(HOUR_SECONDS) + int64(minutes)*int64(MINUTE_SECONDS) + int64(seconds)
	if value >= int64(INF_TIME) {
		return 0, ErrInvalidTime
	}
	return Time(value), nil
}

func parseDigits(s string) (int, bool) {
	if len(s) == 0 || len(s) > 6 {
		return 0, false
	}
	value := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		value = value*10 + int(s[i]-'0')
	}
	return value, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
