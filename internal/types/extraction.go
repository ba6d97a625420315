// Package types defines the shared data structures passed between the
// extraction pipeline stages.
package types

// TargetKind classifies what a target URL points at on the source surface.
type TargetKind string

const (
	// KindProfile is a venue or host profile page
	KindProfile TargetKind = "profile"
	// KindGroup is a community group page
	KindGroup TargetKind = "group"
	// KindPhoto is a single shared photo (typically a schedule flyer)
	KindPhoto TargetKind = "single-photo"
)

// ValidKind reports whether k is one of the declared target kinds.
func ValidKind(k TargetKind) bool {
	switch k {
	case KindProfile, KindGroup, KindPhoto:
		return true
	}
	return false
}

// ExtractionTarget identifies one URL to extract. Immutable once dispatched
// to the coordinator.
type ExtractionTarget struct {
	URL  string     `json:"url"`
	Kind TargetKind `json:"kind"`
}

// StrategyResult is the outcome of a single strategy attempt. A strategy
// either fully succeeds (Success true with content or sub-items) or fully
// fails; partial results are never produced.
type StrategyResult struct {
	StrategyName string   `json:"strategy_name"`
	Success      bool     `json:"success"`
	PageText     string   `json:"page_text,omitempty"`
	Screenshot   []byte   `json:"-"`
	SubItems     []string `json:"sub_items,omitempty"`
	Diagnostics  []string `json:"diagnostics,omitempty"`
}

// AggregateResult is returned to the catalog-ingestion collaborator. It
// always carries the diagnostics trail, including for terminal failures.
type AggregateResult struct {
	RunID       string                    `json:"run_id"`
	Target      ExtractionTarget          `json:"target"`
	Strategy    string                    `json:"strategy,omitempty"`
	Succeeded   bool                      `json:"succeeded"`
	Records     []ScheduleRecordCandidate `json:"records,omitempty"`
	Diagnostics []string                  `json:"diagnostics,omitempty"`
}

// WorkItem is one sub-item URL with its position in the discovered list.
// The index allows deterministic reassembly of results.
type WorkItem struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// WorkResult is the outcome of processing one WorkItem. ResolvedSourceURL
// is the fully-resolved content-delivery URL that was actually fetched,
// never the original share/redirect URL; downstream dedup depends on it.
type WorkResult struct {
	Index             int                       `json:"index"`
	ResolvedSourceURL string                    `json:"resolved_source_url,omitempty"`
	Candidates        []ScheduleRecordCandidate `json:"candidates,omitempty"`
	Err               error                     `json:"-"`
}
