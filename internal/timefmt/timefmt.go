// Package timefmt formats and parses millisecond durations as split-timer
// strings such as "6:34.11" or "1:02:03.40".
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format renders ms as [h:]m:ss.cc, or s.cc under a minute. Negative values
// keep their sign.
func Format(ms int64) string {
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	cs := (ms % 1000) / 10
	totalSec := ms / 1000
	sec := totalSec % 60
	totalMin := totalSec / 60
	minutes := totalMin % 60
	hours := totalMin / 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%s%d:%02d:%02d.%02d", sign, hours, minutes, sec, cs)
	case minutes > 0:
		return fmt.Sprintf("%s%d:%02d.%02d", sign, minutes, sec, cs)
	default:
		return fmt.Sprintf("%s%d.%02d", sign, sec, cs)
	}
}

// FormatDelta renders a split difference with an explicit sign.
func FormatDelta(ms int64) string {
	if ms < 0 {
		return Format(ms)
	}
	return "+" + Format(ms)
}

// FormatClock renders an epoch timestamp in ms as a local wall-clock time.
func FormatClock(epochMs int64) string {
	return time.UnixMilli(epochMs).Local().Format("3:04 PM")
}

// Optional renders a possibly unknown duration, using "--" when unknown.
func Optional(ms *int64) string {
	if ms == nil {
		return "--"
	}
	return Format(*ms)
}

// Parse reads [[h:]m:]s[.fraction] into milliseconds.
func Parse(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty time")
	}
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: too many ':' separators", value)
	}

	secPart := parts[len(parts)-1]
	whole, frac, _ := strings.Cut(secPart, ".")
	sec, err := parseField(value, whole)
	if err != nil {
		return 0, err
	}
	var ms int64
	if frac != "" {
		if len(frac) > 3 {
			frac = frac[:3]
		}
		n, err := parseField(value, frac)
		if err != nil {
			return 0, err
		}
		for i := len(frac); i < 3; i++ {
			n *= 10
		}
		ms = n
	}

	var minutes, hours int64
	if len(parts) >= 2 {
		if minutes, err = parseField(value, parts[len(parts)-2]); err != nil {
			return 0, err
		}
		if sec >= 60 {
			return 0, fmt.Errorf("invalid time %q: seconds must be below 60", value)
		}
	}
	if len(parts) == 3 {
		if hours, err = parseField(value, parts[0]); err != nil {
			return 0, err
		}
		if minutes >= 60 {
			return 0, fmt.Errorf("invalid time %q: minutes must be below 60", value)
		}
	}
	return ((hours*60+minutes)*60+sec)*1000 + ms, nil
}

func parseField(value, field string) (int64, error) {
	if field == "" {
		return 0, fmt.Errorf("invalid time %q: empty field", value)
	}
	n, err := strconv.ParseInt(field, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return n, nil
}
