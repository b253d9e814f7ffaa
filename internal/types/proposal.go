package types

import (
	"fmt"
	"strings"
	"time"
)

// ProposalStatus represents the lifecycle state of a change proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalProposed ProposalStatus = "proposed"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

// IsValid checks if the proposal status value is valid.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalPending, ProposalProposed, ProposalApproved, ProposalRejected:
		return true
	}
	return false
}

// Resolved reports whether the proposal has reached a terminal state.
// Resolved proposals are immutable; superseding one requires a fresh
// proposal with a new id.
func (s ProposalStatus) Resolved() bool {
	return s == ProposalApproved || s == ProposalRejected
}

// ProposalType categorizes what a proposal wants to change.
type ProposalType string

const (
	ProposalCreate     ProposalType = "create"
	ProposalUpdate     ProposalType = "update"
	ProposalConnect    ProposalType = "connect"
	ProposalDisconnect ProposalType = "disconnect"
	ProposalMarkReady  ProposalType = "mark_ready"
)

// Proposal is a pending or resolved request to alter the graph.
type Proposal struct {
	ID        string         `json:"id"`
	Type      ProposalType   `json:"type"`
	FeatureID string         `json:"feature_id"`
	Summary   string         `json:"summary"`
	Rationale string         `json:"rationale,omitempty"`
	Status    ProposalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate checks if the proposal has valid field values.
func (p *Proposal) Validate() error {
	if p.ID == "" {
		return &ValidationError{Message: "proposal id is required"}
	}
	if p.FeatureID == "" {
		return &ValidationError{Message: "proposal feature id is required"}
	}
	if !p.Status.IsValid() {
		return &ValidationError{Message: fmt.Sprintf("invalid proposal status: %s", p.Status)}
	}
	return nil
}

// QuestionStatus represents the lifecycle state of a clarifying question.
type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionAnswered QuestionStatus = "answered"
)

// IsValid checks if the question status value is valid.
func (s QuestionStatus) IsValid() bool {
	return s == QuestionPending || s == QuestionAnswered
}

// ClarifyingQuestion is raised when a mutation request is ambiguous.
// Answers arrive out of band; the engine only records the question.
type ClarifyingQuestion struct {
	ID                string         `json:"id"`
	Question          string         `json:"question"`
	Context           string         `json:"context,omitempty"`
	RelatedFeatureIDs []string       `json:"related_feature_ids,omitempty"`
	Options           []string       `json:"options,omitempty"`
	Status            QuestionStatus `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Validate checks if the question has valid field values.
func (q *ClarifyingQuestion) Validate() error {
	if q.ID == "" {
		return &ValidationError{Message: "question id is required"}
	}
	if strings.TrimSpace(q.Question) == "" {
		return &ValidationError{Message: "question text is required"}
	}
	if !q.Status.IsValid() {
		return &ValidationError{Message: fmt.Sprintf("invalid question status: %s", q.Status)}
	}
	return nil
}

// HistoryEntry is an append-only audit record written after every
// applied mutation. Entries are never updated or removed.
type HistoryEntry struct {
	ProposalID string    `json:"proposal_id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	Summary    string    `json:"summary"`
}
