package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	TopicComplaintProcessed = "complaint_processed"
	TopicComplaintRejected  = "complaint_rejected"
	TopicComplaintSubmitted = "complaint_submitted"
	TopicComplaintResolved  = "complaint_resolved"
)

// TargetClassified labels a processed verdict that leaves status untouched.
const TargetClassified = "CLASSIFIED"

type ComplaintAnalysis struct {
	Category   string   `json:"category"`
	Severity   string   `json:"severity"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Sentiment  *float64 `json:"sentiment,omitempty"`
}

type ComplaintProcessedEvent struct {
	ComplaintID     string            `json:"complaint_id"`
	TicketID        string            `json:"ticketId"`
	DistrictID      *string           `json:"districtId"`
	Analysis        ComplaintAnalysis `json:"analysis"`
	Status          string            `json:"status"`
	AssignedOfficer *string           `json:"assigned_officer"`
	IsDuplicate     bool              `json:"is_duplicate"`

	// raw analysis object as received, stored verbatim on the complaint.
	RawAnalysis json.RawMessage `json:"-"`
}

// TargetStatus is the status label this verdict drives the complaint to.
func (e ComplaintProcessedEvent) TargetStatus() string {
	if e.HasOfficer() {
		return string(StatusInProgress)
	}
	return TargetClassified
}

func (e ComplaintProcessedEvent) HasOfficer() bool {
	return e.AssignedOfficer != nil && strings.TrimSpace(*e.AssignedOfficer) != ""
}

type ComplaintRejectedEvent struct {
	ComplaintID string  `json:"complaint_id"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
}

func (e ComplaintRejectedEvent) TargetStatus() string {
	return string(StatusRejected)
}

// MarkerKey identifies one logical inbound verdict for duplicate suppression.
func MarkerKey(topic, complaintID, targetStatus string) string {
	return topic + ":" + complaintID + ":" + targetStatus
}

type processedWire struct {
	ComplaintID     *string          `json:"complaint_id"`
	TicketID        string           `json:"ticketId"`
	DistrictID      *string          `json:"districtId"`
	Analysis        *json.RawMessage `json:"analysis"`
	Status          string           `json:"status"`
	AssignedOfficer *string          `json:"assigned_officer"`
	IsDuplicate     *bool            `json:"is_duplicate"`
}

type analysisWire struct {
	Category   *string  `json:"category"`
	Severity   *string  `json:"severity"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Sentiment  *float64 `json:"sentiment"`
}

type rejectedWire struct {
	ComplaintID *string  `json:"complaint_id"`
	Score       *float64 `json:"score"`
	Reason      string   `json:"reason"`
}

// ParseComplaintProcessed decodes and validates a complaint_processed
// payload. Every failure wraps ErrMalformedEvent.
func ParseComplaintProcessed(payload []byte) (ComplaintProcessedEvent, error) {
	var wire processedWire
	if err := decodeObject(payload, &wire); err != nil {
		return ComplaintProcessedEvent{}, err
	}
	if wire.ComplaintID == nil || strings.TrimSpace(*wire.ComplaintID) == "" {
		return ComplaintProcessedEvent{}, malformed("complaint_id is required")
	}
	if wire.Analysis == nil || len(bytes.TrimSpace(*wire.Analysis)) == 0 || string(bytes.TrimSpace(*wire.Analysis)) == "null" {
		return ComplaintProcessedEvent{}, malformed("analysis is required")
	}
	var analysis analysisWire
	if err := decodeObject(*wire.Analysis, &analysis); err != nil {
		return ComplaintProcessedEvent{}, err
	}
	if analysis.Category == nil || strings.TrimSpace(*analysis.Category) == "" {
		return ComplaintProcessedEvent{}, malformed("analysis.category is required")
	}
	if analysis.Severity == nil {
		return ComplaintProcessedEvent{}, malformed("analysis.severity is required")
	}
	confidence := 0.0
	if analysis.Confidence != nil {
		confidence = *analysis.Confidence
		if confidence < 0 || confidence > 1 {
			return ComplaintProcessedEvent{}, malformed("analysis.confidence out of range")
		}
	}
	if analysis.Sentiment != nil && (*analysis.Sentiment < 0 || *analysis.Sentiment > 1) {
		return ComplaintProcessedEvent{}, malformed("analysis.sentiment out of range")
	}

	event := ComplaintProcessedEvent{
		ComplaintID: strings.TrimSpace(*wire.ComplaintID),
		TicketID:    strings.TrimSpace(wire.TicketID),
		DistrictID:  wire.DistrictID,
		Analysis: ComplaintAnalysis{
			Category:   strings.TrimSpace(*analysis.Category),
			Severity:   strings.TrimSpace(*analysis.Severity),
			Confidence: confidence,
			Reasoning:  analysis.Reasoning,
			Sentiment:  analysis.Sentiment,
		},
		Status:          strings.TrimSpace(wire.Status),
		AssignedOfficer: wire.AssignedOfficer,
		RawAnalysis:     append(json.RawMessage(nil), *wire.Analysis...),
	}
	if wire.IsDuplicate != nil {
		event.IsDuplicate = *wire.IsDuplicate
	}
	return event, nil
}

// ParseComplaintRejected decodes and validates a complaint_rejected payload.
func ParseComplaintRejected(payload []byte) (ComplaintRejectedEvent, error) {
	var wire rejectedWire
	if err := decodeObject(payload, &wire); err != nil {
		return ComplaintRejectedEvent{}, err
	}
	if wire.ComplaintID == nil || strings.TrimSpace(*wire.ComplaintID) == "" {
		return ComplaintRejectedEvent{}, malformed("complaint_id is required")
	}
	if wire.Score == nil {
		return ComplaintRejectedEvent{}, malformed("score is required")
	}
	if *wire.Score < 0 || *wire.Score > 1 {
		return ComplaintRejectedEvent{}, malformed("score out of range")
	}
	return ComplaintRejectedEvent{
		ComplaintID: strings.TrimSpace(*wire.ComplaintID),
		Score:       *wire.Score,
		Reason:      wire.Reason,
	}, nil
}

func decodeObject(payload []byte, out any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return malformed("payload must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedEvent, reason)
}
