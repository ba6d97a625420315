package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/venue-scout/internal/llm"
	"github.com/jonathan/venue-scout/internal/types"
)

// Content is the raw material for one normalization call: extracted page
// text, a flyer image, or both.
type Content struct {
	Text        string
	Image       []byte
	ImageFormat string // image subtype, e.g. "jpeg", "png"
}

// Normalizer sends content to the generative service and decodes schedule
// record candidates from the response.
type Normalizer struct {
	client   llm.Client
	validate *validator.Validate
	verbose  bool
}

// New creates a Normalizer.
func New(client llm.Client, verbose bool) *Normalizer {
	return &Normalizer{
		client:   client,
		validate: validator.New(),
		verbose:  verbose,
	}
}

// responseDoc is the wire shape of the service response.
type responseDoc struct {
	Candidates []types.ScheduleRecordCandidate `json:"candidates"`
}

// Normalize sends the content plus a bounded prompt to the service and
// returns the decoded candidates. A response that is not a single JSON
// document of the expected shape fails closed: empty candidate list and a
// ParseError, never a guessed record.
func (n *Normalizer) Normalize(ctx context.Context, content Content, nctx Context) ([]types.ScheduleRecordCandidate, error) {
	if content.Text == "" && len(content.Image) == 0 {
		return nil, &APICallError{Message: "no content to normalize"}
	}

	prompt := BuildSchedulePrompt(nctx, content.Text)
	tier := tierFor(content, nctx)

	var raw string
	var err error
	if len(content.Image) > 0 {
		format := content.ImageFormat
		if format == "" {
			format = "jpeg"
		}
		raw, err = n.client.GenerateJSONWithImage(ctx, prompt, content.Image, format, tier)
	} else {
		raw, err = n.client.GenerateJSON(ctx, prompt, tier)
	}
	if err != nil {
		return nil, &APICallError{Message: "generation failed", Cause: err}
	}

	candidates, err := n.parseResponse(raw, nctx)
	if err != nil {
		return nil, err
	}

	if n.verbose {
		log.Printf("[NORMALIZE] %d candidates from %s", len(candidates), nctx.SourceURL)
	}
	return candidates, nil
}

// tierFor picks the model tier for a normalization call. Structured text
// (og: title/description snippets) is short and regular enough for the lite
// tier; free-text posts and flyer images need the standard model.
func tierFor(content Content, nctx Context) llm.ModelTier {
	if len(content.Image) == 0 && nctx.Origin == OriginStructured {
		return llm.TierLite
	}
	return llm.TierStandard
}

// parseResponse decodes and validates the raw service response.
func (n *Normalizer) parseResponse(raw string, nctx Context) ([]types.ScheduleRecordCandidate, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &ParseError{Message: "empty response"}
	}

	// Exactly one JSON document; trailing documents mean the model ignored
	// the single-object instruction.
	dec := json.NewDecoder(strings.NewReader(cleaned))
	var probe json.RawMessage
	if err := dec.Decode(&probe); err != nil {
		return nil, &ParseError{Message: "response is not JSON", Cause: err}
	}
	if dec.More() {
		return nil, &ParseError{Message: "response contains multiple JSON documents"}
	}

	schemaResult, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(responseSchema),
		gojsonschema.NewBytesLoader(probe),
	)
	if err != nil {
		return nil, &ParseError{Message: "schema validation failed", Cause: err}
	}
	if !schemaResult.Valid() {
		msgs := make([]string, 0, len(schemaResult.Errors()))
		for _, e := range schemaResult.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &ParseError{Message: fmt.Sprintf("response does not match expected shape: %s", strings.Join(msgs, "; "))}
	}

	var doc responseDoc
	if err := json.Unmarshal(probe, &doc); err != nil {
		return nil, &ParseError{Message: "failed to decode candidates", Cause: err}
	}

	baseline := BaselineConfidence(types.TargetKind(nctx.Kind), nctx.Origin)

	out := make([]types.ScheduleRecordCandidate, 0, len(doc.Candidates))
	for _, c := range doc.Candidates {
		c.Day = strings.ToLower(strings.TrimSpace(c.Day))
		c.SourceURL = nctx.SourceURL
		if c.Confidence == 0 {
			c.Confidence = baseline
		}
		if c.Confidence > 1 {
			c.Confidence = 1
		}
		if err := n.validate.Struct(c); err != nil {
			if n.verbose {
				log.Printf("[NORMALIZE] dropping invalid candidate for %s: %v", nctx.SourceURL, err)
			}
			continue
		}
		out = append(out, c)
	}

	return out, nil
}
