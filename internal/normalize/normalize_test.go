package normalize

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/venue-scout/internal/llm"
	"github.com/jonathan/venue-scout/internal/types"
)

// fakeClient returns a scripted response and records the last prompt and tier.
type fakeClient struct {
	response   string
	err        error
	lastPrompt string
	lastTier   llm.ModelTier
	imageCalls int
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	f.lastTier = tier
	return f.response, f.err
}

func (f *fakeClient) GenerateJSONWithImage(_ context.Context, prompt string, _ []byte, _ string, tier llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	f.lastTier = tier
	f.imageCalls++
	return f.response, f.err
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

func textContext() Context {
	return Context{
		SourceURL: "https://www.facebook.com/somevenue",
		Kind:      string(types.KindProfile),
		Origin:    OriginFreeText,
	}
}

func TestNormalizeValidResponse(t *testing.T) {
	client := &fakeClient{response: `{
		"candidates": [
			{"venue": "The Tin Roof", "city": "Austin", "state": "TX",
			 "day": "Thursday", "start_time": "21:00", "end_time": "01:00",
			 "host_name": "Kelly", "confidence": 0.9}
		]
	}`}

	n := New(client, false)
	candidates, err := n.Normalize(context.Background(), Content{Text: "karaoke thursdays 9pm with kelly"}, textContext())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "The Tin Roof", c.Venue)
	assert.Equal(t, "thursday", c.Day, "day tokens are lower-cased")
	assert.Equal(t, "21:00", c.StartTime)
	assert.Equal(t, 0.9, c.Confidence)
	assert.Equal(t, "https://www.facebook.com/somevenue", c.SourceURL)
}

func TestNormalizeDefaultsConfidenceByOrigin(t *testing.T) {
	response := `{"candidates": [{"venue": "Bar None", "day": "friday", "start_time": "20:00"}]}`

	tests := []struct {
		name     string
		nctx     Context
		expected float64
	}{
		{"free text", Context{SourceURL: "u", Kind: string(types.KindProfile), Origin: OriginFreeText}, 0.7},
		{"structured", Context{SourceURL: "u", Kind: string(types.KindProfile), Origin: OriginStructured}, 0.9},
		{"photo flyer", Context{SourceURL: "u", Kind: string(types.KindPhoto), Origin: OriginFreeText}, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(&fakeClient{response: response}, false)
			candidates, err := n.Normalize(context.Background(), Content{Text: "flyer text"}, tt.nctx)
			require.NoError(t, err)
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.expected, candidates[0].Confidence)
		})
	}
}

func TestNormalizeFailsClosedOnNonJSON(t *testing.T) {
	n := New(&fakeClient{response: "I could not find any schedule information, sorry!"}, false)

	candidates, err := n.Normalize(context.Background(), Content{Text: "text"}, textContext())
	assert.Empty(t, candidates)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestNormalizeFailsClosedOnMultipleDocuments(t *testing.T) {
	n := New(&fakeClient{response: `{"candidates": []} {"candidates": []}`}, false)

	_, err := n.Normalize(context.Background(), Content{Text: "text"}, textContext())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Message, "multiple JSON documents")
}

func TestNormalizeFailsClosedOnWrongShape(t *testing.T) {
	// Valid JSON, wrong shape: candidates must be an array.
	n := New(&fakeClient{response: `{"candidates": "The Tin Roof thursdays"}`}, false)

	_, err := n.Normalize(context.Background(), Content{Text: "text"}, textContext())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestNormalizeDropsInvalidCandidates(t *testing.T) {
	// Second candidate is missing its venue; it is dropped, not guessed.
	n := New(&fakeClient{response: `{"candidates": [
		{"venue": "The Tin Roof", "day": "thursday", "start_time": "21:00"},
		{"venue": "", "day": "friday", "start_time": "20:00"}
	]}`}, false)

	candidates, err := n.Normalize(context.Background(), Content{Text: "text"}, textContext())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "The Tin Roof", candidates[0].Venue)
}

func TestNormalizeMarkdownWrappedResponse(t *testing.T) {
	n := New(&fakeClient{response: "```json\n{\"candidates\": [{\"venue\": \"V\", \"day\": \"monday\", \"start_time\": \"19:00\"}]}\n```"}, false)

	candidates, err := n.Normalize(context.Background(), Content{Text: "text"}, textContext())
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestNormalizeImageContentUsesVisionCall(t *testing.T) {
	client := &fakeClient{response: `{"candidates": [{"venue": "V", "day": "saturday", "start_time": "20:00"}]}`}
	n := New(client, false)

	_, err := n.Normalize(context.Background(), Content{Image: []byte{0xff, 0xd8}, ImageFormat: "jpeg"}, Context{
		SourceURL: "https://cdn.example.com/flyer.jpg",
		Kind:      string(types.KindPhoto),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.imageCalls)
	assert.Contains(t, client.lastPrompt, "attached image")
}

func TestNormalizeAPIError(t *testing.T) {
	n := New(&fakeClient{err: fmt.Errorf("quota exhausted")}, false)

	_, err := n.Normalize(context.Background(), Content{Text: "text"}, textContext())
	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
}

func TestNormalizeEmptyContent(t *testing.T) {
	n := New(&fakeClient{}, false)
	_, err := n.Normalize(context.Background(), Content{}, textContext())
	assert.Error(t, err)
}

func TestNormalizeTierSelection(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		origin  FieldOrigin
		want    llm.ModelTier
	}{
		{
			name:    "structured snippet uses lite tier",
			content: Content{Text: "Karaoke Thursdays 9pm | Mel's Tavern"},
			origin:  OriginStructured,
			want:    llm.TierLite,
		},
		{
			name:    "free text uses standard tier",
			content: Content{Text: "come sing with us every thursday night"},
			origin:  OriginFreeText,
			want:    llm.TierStandard,
		},
		{
			name:    "image always uses standard tier",
			content: Content{Image: []byte{0xff, 0xd8}, ImageFormat: "jpeg"},
			origin:  OriginStructured,
			want:    llm.TierStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{response: `{"candidates": []}`}
			n := New(client, false)

			nctx := textContext()
			nctx.Origin = tt.origin
			_, err := n.Normalize(context.Background(), tt.content, nctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.lastTier)
		})
	}
}

func TestBuildSchedulePromptRules(t *testing.T) {
	prompt := BuildSchedulePrompt(Context{VenueHint: "Karaoke with Kelly"}, "thursdays at 9")
	assert.Contains(t, prompt, "lower-case word")
	assert.Contains(t, prompt, "9pm -> 21:00")
	assert.Contains(t, prompt, "0.9")
	assert.Contains(t, prompt, "0.7")
	assert.Contains(t, prompt, "Karaoke with Kelly")
	assert.Contains(t, prompt, "thursdays at 9")
}

func TestBaselineConfidence(t *testing.T) {
	assert.Equal(t, 0.9, BaselineConfidence(types.KindProfile, OriginStructured))
	assert.Equal(t, 0.7, BaselineConfidence(types.KindProfile, OriginFreeText))
	assert.Equal(t, 0.7, BaselineConfidence(types.KindGroup, FieldOrigin("")))
	assert.Equal(t, 0.9, BaselineConfidence(types.KindPhoto, OriginFreeText))
}
