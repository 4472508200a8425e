package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChunkResponse_FullFormat(t *testing.T) {
	raw := `SUMMARY:
The group planned a weekend trip and debated the budget.
Alice volunteered to book the cabin.

TOPICS:
- Weekend trip
- Budget

ACTION ITEMS:
- Alice: book the cabin
- Bob: check train times

PARTICIPANTS:
- Alice: Organized the trip and handled bookings.
- Bob: Focused on logistics.`

	ca := parseChunkResponse(raw)
	assert.Equal(t, "The group planned a weekend trip and debated the budget.\nAlice volunteered to book the cabin.", ca.summary)
	assert.Equal(t, []string{"Weekend trip", "Budget"}, ca.topics)
	assert.Equal(t, []string{"Alice: book the cabin", "Bob: check train times"}, ca.actionItems)
	require.Len(t, ca.participants, 2)
	assert.Equal(t, participantNote{Name: "Alice", Note: "Organized the trip and handled bookings."}, ca.participants[0])
	assert.Equal(t, participantNote{Name: "Bob", Note: "Focused on logistics."}, ca.participants[1])
}

func TestParseChunkResponse_CaseInsensitiveHeaders(t *testing.T) {
	raw := "Summary:\nshort recap\n\ntopics:\n- one"
	ca := parseChunkResponse(raw)
	assert.Equal(t, "short recap", ca.summary)
	assert.Equal(t, []string{"one"}, ca.topics)
}

func TestParseChunkResponse_MissingSections(t *testing.T) {
	ca := parseChunkResponse("SUMMARY:\njust a summary, nothing else")
	assert.Equal(t, "just a summary, nothing else", ca.summary)
	assert.Empty(t, ca.topics)
	assert.Empty(t, ca.actionItems)
	assert.Empty(t, ca.participants)
}

func TestParseChunkResponse_PreambleIgnored(t *testing.T) {
	// 小节之前的自由文本（模型寒暄）不归入任何小节
	raw := "Sure, here is the analysis you asked for.\n\nSUMMARY:\nthe recap"
	ca := parseChunkResponse(raw)
	assert.Equal(t, "the recap", ca.summary)
}

func TestParseChunkResponse_ParticipantLineVariants(t *testing.T) {
	raw := `PARTICIPANTS:
- Alice: Led the discussion.
Bob: Asked questions.
- : empty name dropped
- Carol:
not a participant line`

	ca := parseChunkResponse(raw)
	require.Len(t, ca.participants, 2)
	assert.Equal(t, "Alice", ca.participants[0].Name)
	assert.Equal(t, "Bob", ca.participants[1].Name)
}

func TestParseBulletList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"短横线列表", "- one\n- two", []string{"one", "two"}},
		{"星号列表", "* one\n* two", []string{"one", "two"}},
		{"点号编号", "1. one\n2. two", []string{"one", "two"}},
		{"括号编号", "1) one\n12) twelve", []string{"one", "twelve"}},
		{"混合及忽略行", "- one\nplain text\n2. two\n- ", []string{"one", "two"}},
		{"空输入", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseBulletList(tt.raw))
		})
	}
}
