package types

// ScheduleRecordCandidate is an AI-produced, not-yet-validated guess at a
// recurring event's venue/time/host. Produced by the normalizer; the
// time/day validator may rewrite StartTime/EndTime and Confidence and
// append Issues. Once emitted in an AggregateResult it is immutable.
type ScheduleRecordCandidate struct {
	Venue      string   `json:"venue" validate:"required"`
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	Day        string   `json:"day" validate:"required"`
	StartTime  string   `json:"start_time" validate:"required"`
	EndTime    string   `json:"end_time,omitempty"`
	HostName   string   `json:"host_name,omitempty"`
	Confidence float64  `json:"confidence" validate:"gte=0,lte=1"`
	SourceURL  string   `json:"source_url,omitempty"`
	Issues     []string `json:"issues,omitempty"`
}
