package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComplaintProcessed(t *testing.T) {
	payload := []byte(`{
		"complaint_id": "c-1",
		"ticketId": "JSK-2026-12345",
		"districtId": "D1",
		"analysis": {"category": "Pothole", "severity": "High", "confidence": 0.82, "reasoning": "deep hole"},
		"status": "IN_PROGRESS",
		"assigned_officer": "o-7",
		"is_duplicate": true
	}`)
	event, err := ParseComplaintProcessed(payload)
	require.NoError(t, err)
	assert.Equal(t, "c-1", event.ComplaintID)
	assert.Equal(t, "Pothole", event.Analysis.Category)
	assert.Equal(t, "High", event.Analysis.Severity)
	assert.InDelta(t, 0.82, event.Analysis.Confidence, 1e-9)
	assert.True(t, event.IsDuplicate)
	assert.True(t, event.HasOfficer())
	assert.Equal(t, "IN_PROGRESS", event.TargetStatus())
	assert.Contains(t, string(event.RawAnalysis), "deep hole")
}

func TestParseComplaintProcessedWithoutOfficer(t *testing.T) {
	event, err := ParseComplaintProcessed([]byte(`{"complaint_id":"c-2","analysis":{"category":"Water","severity":"Low"},"assigned_officer":null}`))
	require.NoError(t, err)
	assert.False(t, event.HasOfficer())
	assert.Equal(t, TargetClassified, event.TargetStatus())
}

func TestParseComplaintProcessedRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `not-json`,
		"array":            `[1,2]`,
		"missing id":       `{"analysis":{"category":"Water","severity":"Low"}}`,
		"blank id":         `{"complaint_id":"  ","analysis":{"category":"Water","severity":"Low"}}`,
		"missing analysis": `{"complaint_id":"c"}`,
		"null analysis":    `{"complaint_id":"c","analysis":null}`,
		"missing category": `{"complaint_id":"c","analysis":{"severity":"Low"}}`,
		"missing severity": `{"complaint_id":"c","analysis":{"category":"Water"}}`,
		"confidence range": `{"complaint_id":"c","analysis":{"category":"Water","severity":"Low","confidence":1.5}}`,
		"wrong id type":    `{"complaint_id":12,"analysis":{"category":"Water","severity":"Low"}}`,
		"wrong duplicate":  `{"complaint_id":"c","analysis":{"category":"Water","severity":"Low"},"is_duplicate":"yes"}`,
		"sentiment range":  `{"complaint_id":"c","analysis":{"category":"Water","severity":"Low","sentiment":-0.1}}`,
		"empty":            ``,
	}
	for name, payload := range cases {
		_, err := ParseComplaintProcessed([]byte(payload))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrMalformedEvent), name)
	}
}

func TestParseComplaintRejected(t *testing.T) {
	event, err := ParseComplaintRejected([]byte(`{"complaint_id":"c-3","score":0.9,"reason":"spam"}`))
	require.NoError(t, err)
	assert.Equal(t, "c-3", event.ComplaintID)
	assert.InDelta(t, 0.9, event.Score, 1e-9)
	assert.Equal(t, "REJECTED", event.TargetStatus())

	for _, payload := range []string{`{"score":0.9}`, `{"complaint_id":"c"}`, `{"complaint_id":"c","score":2}`, `{`} {
		_, err := ParseComplaintRejected([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformedEvent, payload)
	}
}

func TestMarkerKey(t *testing.T) {
	assert.Equal(t, "complaint_rejected:c-1:REJECTED", MarkerKey(TopicComplaintRejected, "c-1", "REJECTED"))
}
