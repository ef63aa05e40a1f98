package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FullDay is the occupied-slot value meaning every slot on the date is taken.
const FullDay = "FULL_DAY"

var ErrInvalidLabel = errors.New("invalid slot label")

var (
	labelPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}) (AM|PM)$`)
	clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// FormatLabel renders a 24-hour clock time as a slot label such as "4:30 PM".
func FormatLabel(hour, minute int) string {
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	if hour > 12 {
		hour -= 12
	}
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, ampm)
}

// ParseLabel converts a slot label back into a 24-hour clock time.
func ParseLabel(label string) (hour, minute int, err error) {
	m := labelPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	switch {
	case m[3] == "PM" && hour < 12:
		hour += 12
	case m[3] == "AM" && hour == 12:
		hour = 0
	}
	return hour, minute, nil
}

// IsLabel reports whether s is already a canonical slot label.
func IsLabel(s string) bool {
	h, m, err := ParseLabel(s)
	return err == nil && FormatLabel(h, m) == s
}

// Normalize maps a time value echoed back by the spreadsheet store onto the
// canonical slot label. Spreadsheet datetime serializations such as
// "2023-12-30T16:30:00.000Z" or "1899-12-30T11:00:00" are reduced to their
// first clock reading; anything else is returned trimmed and unchanged.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "T") && !strings.Contains(s, ":00.000") {
		return s
	}
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return s
	}
	return FormatLabel(hour, minute)
}
