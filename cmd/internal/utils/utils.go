package utils

import (
	"errors"
	"reflect"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

func FromEpoch(rfc string) (int64, error) {
	t, err := time.Parse(time.RFC3339, rfc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// CombineDateClock resolves a calendar day plus a time-of-day into an epoch
// millis instant (UTC). This is how booking slots are compared against event
// instants and reminder times.
func CombineDateClock(date, clock string) (int64, error) {
	t, err := time.Parse(DateLayout+" "+ClockLayout, date+" "+clock)
	if err != nil {
		return 0, err
	}
	return t.UTC().UnixMilli(), nil
}

// SplitEpoch is the inverse of CombineDateClock: it renders an instant as a
// (date, time-of-day) pair in UTC.
func SplitEpoch(millis int64) (date, clock string) {
	t := time.UnixMilli(millis).UTC()
	return t.Format(DateLayout), t.Format(ClockLayout)
}

// FormatMinute renders an instant with minute precision, the granularity used
// in human-readable change descriptions.
func FormatMinute(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(DateLayout + " " + ClockLayout)
}

var errNotSameDay = errors.New("interval does not start and end on the same day")

// SameDayInterval splits an instant pair into the (date, start, end) triple a
// room booking stores. It fails when the interval crosses midnight, which
// bookings do not support.
func SameDayInterval(beginMillis, endMillis int64) (date, start, end string, err error) {
	beginDate, beginClock := SplitEpoch(beginMillis)
	endDate, endClock := SplitEpoch(endMillis)
	if beginDate != endDate {
		return "", "", "", errNotSameDay
	}
	return beginDate, beginClock, endClock, nil
}

func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
