// Package mutation applies structured change requests against feature
// graph snapshots. Every applied change produces a new snapshot
// (copy-on-write), a persisted graph file, and an audit history entry;
// the previous snapshot is never mutated.
package mutation

import (
	"fmt"
	"strings"

	"github.com/featuregraph/fg/internal/types"
)

// RequestType identifies the kind of mutation request.
type RequestType string

const (
	RequestCreateFeature      RequestType = "create_feature"
	RequestUpdateFeature      RequestType = "update_feature"
	RequestConnectFeatures    RequestType = "connect_features"
	RequestDisconnectFeatures RequestType = "disconnect_features"
	RequestMarkReady          RequestType = "mark_ready_for_development"
	RequestProposeChange      RequestType = "propose_feature_change"
	RequestApproveChange      RequestType = "approve_feature_change"
	RequestRejectChange       RequestType = "reject_feature_change"
	RequestAskQuestion        RequestType = "ask_clarifying_question"
	RequestAnalyzeImpact      RequestType = "analyze_impact"
	RequestReplyWithoutChange RequestType = "reply_without_change"
)

// IsValid checks if the request type value is valid.
func (t RequestType) IsValid() bool {
	switch t {
	case RequestCreateFeature, RequestUpdateFeature, RequestConnectFeatures,
		RequestDisconnectFeatures, RequestMarkReady, RequestProposeChange,
		RequestApproveChange, RequestRejectChange, RequestAskQuestion,
		RequestAnalyzeImpact, RequestReplyWithoutChange:
		return true
	}
	return false
}

// Request is one structured change request. Which fields are read
// depends on Type; Validate enforces the per-type requirements.
//
// For update_feature, empty Name/Description/Group fields mean "leave
// unchanged"; clearing a field requires a fresh create.
type Request struct {
	Type RequestType

	// Feature fields (create/update/mark-ready/propose/approve/reject,
	// ask_clarifying_question via RelatedFeatureIDs, analyze_impact).
	FeatureID   string
	Name        string
	Description string
	Group       string
	FeatureIDs  []string

	// Edge fields (connect/disconnect).
	SourceFeatureID string
	TargetFeatureID string
	ConnectionType  types.EdgeType

	// Proposal fields.
	ProposalID   string
	ProposalType types.ProposalType
	Summary      string

	// Rationale is recorded with every mutating request.
	Rationale string

	// Clarifying question fields.
	Question          string
	QuestionContext   string
	Options           []string
	RelatedFeatureIDs []string

	// Impact analysis fields.
	ChangeType string

	// Reply for reply_without_change.
	Reply string
}

// Validate checks the request payload for its type. Payload problems
// are ValidationErrors; referential problems (unknown ids) surface
// later, during apply.
func (r *Request) Validate() error {
	if !r.Type.IsValid() {
		return &types.ValidationError{Message: fmt.Sprintf("unknown request type %q", r.Type)}
	}
	switch r.Type {
	case RequestCreateFeature:
		if strings.TrimSpace(r.FeatureID) == "" {
			return &types.ValidationError{Message: "create_feature requires a feature id"}
		}
		if strings.TrimSpace(r.Name) == "" {
			return &types.ValidationError{Message: "create_feature requires a name"}
		}
	case RequestUpdateFeature:
		if strings.TrimSpace(r.FeatureID) == "" {
			return &types.ValidationError{Message: "update_feature requires a feature id"}
		}
		if r.Name == "" && r.Description == "" && r.Group == "" {
			return &types.ValidationError{Message: "update_feature requires at least one field to change"}
		}
	case RequestConnectFeatures, RequestDisconnectFeatures:
		if r.SourceFeatureID == "" || r.TargetFeatureID == "" {
			return &types.ValidationError{Message: fmt.Sprintf("%s requires source and target feature ids", r.Type)}
		}
	case RequestMarkReady:
		if len(r.FeatureIDs) == 0 {
			return &types.ValidationError{Message: "mark_ready_for_development requires at least one feature id"}
		}
	case RequestProposeChange:
		if strings.TrimSpace(r.FeatureID) == "" {
			return &types.ValidationError{Message: "propose_feature_change requires a feature id"}
		}
		if strings.TrimSpace(r.Summary) == "" {
			return &types.ValidationError{Message: "propose_feature_change requires a summary"}
		}
	case RequestApproveChange, RequestRejectChange:
		if r.ProposalID == "" && r.FeatureID == "" {
			return &types.ValidationError{Message: fmt.Sprintf("%s requires a proposal id or feature id", r.Type)}
		}
	case RequestAskQuestion:
		if strings.TrimSpace(r.Question) == "" {
			return &types.ValidationError{Message: "ask_clarifying_question requires question text"}
		}
	case RequestAnalyzeImpact:
		if strings.TrimSpace(r.FeatureID) == "" {
			return &types.ValidationError{Message: "analyze_impact requires a feature id"}
		}
	case RequestReplyWithoutChange:
		if strings.TrimSpace(r.Reply) == "" {
			return &types.ValidationError{Message: "reply_without_change requires reply text"}
		}
	}
	return nil
}
