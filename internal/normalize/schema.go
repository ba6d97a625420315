// Package normalize - schema.go defines the extraction prompt and the JSON
// shape the service response must satisfy.
package normalize

import (
	"fmt"
	"strings"
)

// responseSchema is the JSON Schema the decoded service response is checked
// against before any candidate is accepted. A response that fails this check
// is a ParseError, not a partial success.
const responseSchema = `{
	"type": "object",
	"required": ["candidates"],
	"properties": {
		"candidates": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["venue", "day", "start_time"],
				"properties": {
					"venue":      {"type": "string"},
					"address":    {"type": "string"},
					"city":       {"type": "string"},
					"state":      {"type": "string"},
					"day":        {"type": "string"},
					"start_time": {"type": "string"},
					"end_time":   {"type": "string"},
					"host_name":  {"type": "string"},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1}
				}
			}
		}
	}
}`

// Context carries per-call metadata into prompt construction and
// post-processing.
type Context struct {
	SourceURL string
	Kind      string // target kind the content came from
	Origin    FieldOrigin
	VenueHint string // venue/host name already known from the page, if any
}

// BuildSchedulePrompt constructs the normalization prompt. The conversion
// rules live in the request, not in free interpretation: lower-case single
// day words, 24-hour times, fixed confidence defaults.
func BuildSchedulePrompt(nctx Context, inputText string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert at reading karaoke and live-event schedules from social media pages and flyers.\n")
	sb.WriteString("Extract every recurring or one-off event you can find into structured records.\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n")
	sb.WriteString(`{
  "candidates": [
    {
      "venue": "string (required)",
      "address": "string",
      "city": "string",
      "state": "string (2-letter)",
      "day": "string (required)",
      "start_time": "string (required)",
      "end_time": "string",
      "host_name": "string",
      "confidence": 0.0
    }
  ]
}`)
	sb.WriteString("\n\nRULES:\n")
	sb.WriteString("- day must be a single lower-case word: monday, tuesday, wednesday, thursday, friday, saturday or sunday.\n")
	sb.WriteString("- Convert 12-hour times to 24-hour HH:MM (9pm -> 21:00, 2am -> 02:00).\n")
	sb.WriteString("- confidence is 0.9 when the value comes from an explicit schedule listing, 0.7 when inferred from free-text posts.\n")
	sb.WriteString("- Do not invent venues, days or times that are not in the content. Omit fields you cannot find.\n")
	sb.WriteString("- Return one JSON object only: no markdown, no explanation, no code blocks.\n\n")

	if nctx.VenueHint != "" {
		sb.WriteString(fmt.Sprintf("The page belongs to: %s\n\n", nctx.VenueHint))
	}

	if inputText != "" {
		sb.WriteString("Content:\n\"\"\"\n")
		sb.WriteString(truncate(inputText, maxPromptContent))
		sb.WriteString("\n\"\"\"\n")
	} else {
		sb.WriteString("The content is the attached image. Read the schedule from it.\n")
	}

	return sb.String()
}

// maxPromptContent bounds the raw content included in a prompt.
const maxPromptContent = 16000

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
