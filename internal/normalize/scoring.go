package normalize

import "github.com/jonathan/venue-scout/internal/types"

// FieldOrigin describes where the content a candidate was inferred from came
// from on the source surface.
type FieldOrigin string

const (
	// OriginStructured means an explicit schedule field (an events tab, a
	// pinned schedule post, a flyer image dedicated to the schedule)
	OriginStructured FieldOrigin = "structured"
	// OriginFreeText means inference from free-text posts or captions
	OriginFreeText FieldOrigin = "free-text"
)

// BaselineConfidence is the pure scoring function for candidate confidence:
// content drawn from an explicit structured schedule field starts at 0.9,
// content inferred from free text at 0.7. Single-photo targets are flyers,
// which count as structured regardless of declared origin.
func BaselineConfidence(kind types.TargetKind, origin FieldOrigin) float64 {
	if kind == types.KindPhoto {
		return 0.9
	}
	switch origin {
	case OriginStructured:
		return 0.9
	case OriginFreeText:
		return 0.7
	default:
		return 0.7
	}
}
