package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"candidates\":[]}\n```",
			want:  `{"candidates":[]}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"candidates\":[]}\n```",
			want:  `{"candidates":[]}`,
		},
		{
			name:  "fence with other info string",
			input: "```javascript\n{\"candidates\":[]}\n```",
			want:  `{"candidates":[]}`,
		},
		{
			name:  "unfenced document untouched",
			input: `{"candidates":[{"venue":"Mel's Tavern"}]}`,
			want:  `{"candidates":[{"venue":"Mel's Tavern"}]}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  ```json\n{\"candidates\":[]}\n```  ",
			want:  `{"candidates":[]}`,
		},
		{
			name:  "first line with content is not an info string",
			input: "```\n{\"day\": \"thursday\"}\n```",
			want:  `{"day": "thursday"}`,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}
