package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TodayDate returns the current day as YYYY-MM-DD, the key format used for
// daily logs and holidays.
func TodayDate() string {
	return time.Now().Format("2006-01-02")
}

// CurrentTime returns the current time-of-day as HH:MM (24h).
func CurrentTime() string {
	return time.Now().Format("15:04")
}

// Format12h converts an HH:MM string to a 12-hour clock for parent-facing
// reports. Malformed input renders as a placeholder instead of failing.
func Format12h(timeStr string) string {
	if !strings.Contains(timeStr, ":") {
		return "--:--"
	}
	parts := strings.SplitN(timeStr, ":", 2)
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return "--:--"
	}
	m := parts[1]
	if m == "" {
		m = "00"
	}
	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	h = h % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%s %s", h, m, ampm)
}
