// Package validate applies domain heuristics to AI-produced schedule
// candidates: AM/PM mis-encodings are corrected, cross-midnight spans are
// recognized as normal, and every correction is recorded as a readable
// issue. The validator never fabricates values it cannot infer.
package validate

import (
	"fmt"
	"strings"

	"github.com/jonathan/venue-scout/internal/types"
)

// Events in this domain do not start between 06:00 and noon; a start hour
// in that range is a mis-encoded PM value.
const (
	suspectStartHour = 6
	noonHour         = 12
	eveningHour      = 18
	lateNightHour    = 6
)

// correctionConfidence is the floor applied when an AM/PM correction fires.
const correctionConfidence = 0.9

// Candidate validates and corrects one schedule record candidate. It returns
// the corrected candidate and the list of issues found; the issues are also
// appended to the candidate's Issues field.
func Candidate(c types.ScheduleRecordCandidate) (types.ScheduleRecordCandidate, []string) {
	var issues []string

	if day, changed := CanonicalDay(c.Day); changed {
		c.Day = day
	}

	start, startOK := parseClock(c.StartTime)
	end, endOK := parseClock(c.EndTime)

	if startOK {
		switch {
		case start.hour >= suspectStartHour && start.hour < noonHour:
			// Almost certainly a PM value written as AM.
			origStart, origEnd := c.StartTime, c.EndTime
			corrected := clock{hour: (start.hour + 12) % 24, minute: start.minute}
			c.StartTime = corrected.String()

			if endOK && end.hour < eveningHour {
				correctedEnd := clock{hour: (end.hour + 12) % 24, minute: end.minute}
				c.EndTime = correctedEnd.String()
			}

			if c.Confidence < correctionConfidence {
				c.Confidence = correctionConfidence
			}

			if origEnd != "" {
				issues = append(issues, fmt.Sprintf(
					"start time %s is in the 06:00-12:00 range, which no event in this domain uses; corrected %s-%s to %s-%s",
					origStart, origStart, origEnd, c.StartTime, c.EndTime))
			} else {
				issues = append(issues, fmt.Sprintf(
					"start time %s is in the 06:00-12:00 range, which no event in this domain uses; corrected to %s",
					origStart, c.StartTime))
			}

		case endOK && start.hour >= eveningHour && (end.hour < lateNightHour || (end.hour == lateNightHour && end.minute == 0)):
			// Cross-midnight span: the normal case for evening events.
			// Allowed as-is, no correction, no issue.
		}
	}

	c.Issues = append(c.Issues, issues...)
	return c, issues
}

// clock is a time of day in 24-hour terms.
type clock struct {
	hour, minute int
}

func (c clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.hour, c.minute)
}

// parseClock parses "HH:MM" (or "H:MM") in 24-hour form.
func parseClock(s string) (clock, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return clock{}, false
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return clock{}, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return clock{}, false
	}
	return clock{hour: h, minute: m}, true
}

// dayCanonical maps free-text day tokens to lower-case weekday names.
var dayCanonical = map[string]string{
	"monday": "monday", "mondays": "monday", "mon": "monday",
	"tuesday": "tuesday", "tuesdays": "tuesday", "tue": "tuesday", "tues": "tuesday",
	"wednesday": "wednesday", "wednesdays": "wednesday", "wed": "wednesday", "weds": "wednesday",
	"thursday": "thursday", "thursdays": "thursday", "thu": "thursday", "thur": "thursday", "thurs": "thursday",
	"friday": "friday", "fridays": "friday", "fri": "friday",
	"saturday": "saturday", "saturdays": "saturday", "sat": "saturday",
	"sunday": "sunday", "sundays": "sunday", "sun": "sunday",
}

// CanonicalDay lower-cases and canonicalizes a day token. Unrecognized
// tokens are returned unchanged; the validator does not guess.
func CanonicalDay(token string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(token))
	if canonical, ok := dayCanonical[trimmed]; ok {
		return canonical, canonical != token
	}
	return token, false
}
