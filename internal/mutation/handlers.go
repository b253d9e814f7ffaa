package mutation

import (
	"context"
	"fmt"
	"strings"

	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/types"
)

func (e *Engine) createFeature(st *graph.Store, req *Request) (*outcome, error) {
	if st.HasFeature(req.FeatureID) {
		return nil, &types.ConflictError{
			Kind:   "feature",
			ID:     req.FeatureID,
			Reason: "a feature with this id already exists",
		}
	}

	file := st.File()
	file.Nodes = append(file.Nodes, types.FeatureNode{
		ID:          req.FeatureID,
		Name:        req.Name,
		Description: req.Description,
		Status:      types.StatusProposed,
		Group:       req.Group,
	})

	summary := fmt.Sprintf("%s created feature %q (%s) in status proposed", e.actor, req.Name, req.FeatureID)
	prop := e.newProposal(req, types.ProposalCreate, req.FeatureID, summary, types.ProposalApproved)
	return &outcome{file: file, summary: summary, proposal: prop}, nil
}

func (e *Engine) updateFeature(st *graph.Store, req *Request) (*outcome, error) {
	if !st.HasFeature(req.FeatureID) {
		return nil, &types.NotFoundError{Kind: "feature", ID: req.FeatureID}
	}

	file := st.File()
	var changed []string
	for i := range file.Nodes {
		if file.Nodes[i].ID != req.FeatureID {
			continue
		}
		if req.Name != "" && req.Name != file.Nodes[i].Name {
			file.Nodes[i].Name = req.Name
			changed = append(changed, "name")
		}
		if req.Description != "" && req.Description != file.Nodes[i].Description {
			file.Nodes[i].Description = req.Description
			changed = append(changed, "description")
		}
		if req.Group != "" && req.Group != file.Nodes[i].Group {
			file.Nodes[i].Group = req.Group
			changed = append(changed, "group")
		}
		break
	}

	if len(changed) == 0 {
		return &outcome{summary: fmt.Sprintf("feature %q already up to date", req.FeatureID)}, nil
	}

	summary := fmt.Sprintf("%s updated feature %q (%s)", e.actor, req.FeatureID, strings.Join(changed, ", "))
	prop := e.newProposal(req, types.ProposalUpdate, req.FeatureID, summary, types.ProposalApproved)
	return &outcome{file: file, summary: summary, proposal: prop}, nil
}

func (e *Engine) connectFeatures(st *graph.Store, req *Request) (*outcome, error) {
	if req.SourceFeatureID == req.TargetFeatureID {
		return nil, &types.ValidationError{
			Message: fmt.Sprintf("cannot connect feature %q to itself", req.SourceFeatureID),
		}
	}
	for _, id := range []string{req.SourceFeatureID, req.TargetFeatureID} {
		if !st.HasFeature(id) {
			return nil, &types.NotFoundError{Kind: "feature", ID: id}
		}
	}

	// Duplicate connections are matched on the pair alone, ignoring
	// type, and reported back instead of silently stacking edges.
	if existing, ok := st.EdgeBetween(req.SourceFeatureID, req.TargetFeatureID); ok {
		return &outcome{summary: fmt.Sprintf("features %q and %q are already connected (%s)",
			req.SourceFeatureID, req.TargetFeatureID, existing.Type)}, nil
	}

	edgeType := req.ConnectionType
	if edgeType == "" {
		edgeType = types.EdgeDependsOn
	}

	file := st.File()
	file.Edges = append(file.Edges, types.FeatureEdge{
		Source: req.SourceFeatureID,
		Target: req.TargetFeatureID,
		Type:   edgeType,
	})

	summary := fmt.Sprintf("%s connected %q -> %q (%s)", e.actor, req.SourceFeatureID, req.TargetFeatureID, edgeType)
	prop := e.newProposal(req, types.ProposalConnect, req.SourceFeatureID, summary, types.ProposalApproved)
	return &outcome{file: file, summary: summary, proposal: prop}, nil
}

func (e *Engine) disconnectFeatures(st *graph.Store, req *Request) (*outcome, error) {
	for _, id := range []string{req.SourceFeatureID, req.TargetFeatureID} {
		if !st.HasFeature(id) {
			return nil, &types.NotFoundError{Kind: "feature", ID: id}
		}
	}

	file := st.File()
	kept := file.Edges[:0]
	removed := 0
	for _, edge := range file.Edges {
		if edge.Source == req.SourceFeatureID && edge.Target == req.TargetFeatureID {
			removed++
			continue
		}
		kept = append(kept, edge)
	}

	// Disconnecting a connection that doesn't exist is a soft no-op:
	// the caller gets told, the graph stays put.
	if removed == 0 {
		return &outcome{summary: fmt.Sprintf("no connection found between %q and %q",
			req.SourceFeatureID, req.TargetFeatureID)}, nil
	}
	file.Edges = kept

	summary := fmt.Sprintf("%s disconnected %q -> %q", e.actor, req.SourceFeatureID, req.TargetFeatureID)
	prop := e.newProposal(req, types.ProposalDisconnect, req.SourceFeatureID, summary, types.ProposalApproved)
	return &outcome{file: file, summary: summary, proposal: prop}, nil
}

// markReady transitions features to active. The batch is best-effort:
// unknown ids and rejected features are reported as invalid while the
// rest still transition. Already-active features count as successes.
func (e *Engine) markReady(st *graph.Store, req *Request) (*outcome, error) {
	file := st.File()
	index := make(map[string]int, len(file.Nodes))
	for i := range file.Nodes {
		index[file.Nodes[i].ID] = i
	}

	var ready, invalid, reasons []string
	seen := make(map[string]bool, len(req.FeatureIDs))
	changed := false
	for _, id := range req.FeatureIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		i, ok := index[id]
		if !ok {
			invalid = append(invalid, id)
			reasons = append(reasons, fmt.Sprintf("%s: not found", id))
			continue
		}
		switch status := file.Nodes[i].Status; {
		case status == types.StatusActive:
			ready = append(ready, id)
		case status.CanTransitionTo(types.StatusActive):
			file.Nodes[i].Status = types.StatusActive
			ready = append(ready, id)
			changed = true
		default:
			invalid = append(invalid, id)
			reasons = append(reasons, fmt.Sprintf("%s: status %s cannot transition to active", id, status))
		}
	}

	ready = sortedCopy(ready)
	invalid = sortedCopy(invalid)

	var parts []string
	if len(ready) > 0 {
		parts = append(parts, fmt.Sprintf("%s marked %s ready for development", e.actor, strings.Join(ready, ", ")))
	}
	if len(reasons) > 0 {
		parts = append(parts, "skipped "+strings.Join(reasons, "; "))
	}
	summary := strings.Join(parts, "; ")

	out := &outcome{summary: summary, readyIDs: ready, invalid: invalid}
	if changed {
		out.file = file
		prop := e.newProposal(req, types.ProposalMarkReady, ready[0], summary, types.ProposalApproved)
		out.proposal = prop
	}
	return out, nil
}

func (e *Engine) proposeChange(st *graph.Store, req *Request) (*outcome, error) {
	typ := req.ProposalType
	if typ == "" {
		typ = types.ProposalUpdate
	}

	prop := e.newProposal(req, typ, req.FeatureID, req.Summary, types.ProposalProposed)
	if req.ProposalID != "" {
		prop.ID = req.ProposalID
	}

	// Proposing creation of a feature that doesn't exist yet stages a
	// proposed-status node so the graph shows work in flight.
	var file *types.GraphFile
	if typ == types.ProposalCreate && !st.HasFeature(req.FeatureID) {
		file = st.File()
		file.Nodes = append(file.Nodes, types.FeatureNode{
			ID:          req.FeatureID,
			Name:        req.Name,
			Description: req.Description,
			Status:      types.StatusProposed,
			Group:       req.Group,
		})
	}

	summary := fmt.Sprintf("%s proposed %s change for feature %q: %s", e.actor, typ, req.FeatureID, req.Summary)
	return &outcome{file: file, summary: summary, proposal: prop}, nil
}

// resolveChange approves or rejects a proposal. Lookup order: by
// proposal id, then by feature id, then synthesize a record so the
// resolution is never lost even when no proposal was filed first.
func (e *Engine) resolveChange(ctx context.Context, st *graph.Store, req *Request, approve bool) (*outcome, error) {
	prop, err := e.lookupProposal(ctx, req)
	if err != nil {
		return nil, err
	}
	if prop.Status.Resolved() {
		return nil, &types.ConflictError{
			Kind:   "proposal",
			ID:     prop.ID,
			Reason: fmt.Sprintf("already %s", prop.Status),
		}
	}

	verb := "approved"
	prop.Status = types.ProposalApproved
	target := types.StatusActive
	if !approve {
		verb = "rejected"
		prop.Status = types.ProposalRejected
		target = types.StatusRejected
	}
	prop.UpdatedAt = e.clock()
	if req.Rationale != "" {
		prop.Rationale = req.Rationale
	}

	// Resolving a proposal settles its feature's lifecycle where the
	// transition is legal: approve activates a proposed or inactive
	// feature, reject moves a proposed one to rejected.
	var file *types.GraphFile
	if f, ok := st.Feature(prop.FeatureID); ok && f.Status.CanTransitionTo(target) {
		file = st.File()
		for i := range file.Nodes {
			if file.Nodes[i].ID == prop.FeatureID {
				file.Nodes[i].Status = target
				break
			}
		}
	}

	summary := fmt.Sprintf("%s %s proposal %s for feature %q: %s", e.actor, verb, prop.ID, prop.FeatureID, prop.Summary)
	return &outcome{file: file, summary: summary, proposal: prop}, nil
}

func (e *Engine) lookupProposal(ctx context.Context, req *Request) (*types.Proposal, error) {
	if req.ProposalID != "" {
		prop, err := e.audit.GetProposal(ctx, req.ProposalID)
		if err == nil {
			return prop, nil
		}
		if !types.IsNotFound(err) {
			return nil, err
		}
		if req.FeatureID == "" {
			return nil, err
		}
		prop = e.newProposal(req, types.ProposalUpdate, req.FeatureID, req.Summary, types.ProposalProposed)
		prop.ID = req.ProposalID
		return prop, nil
	}

	prop, err := e.audit.FindProposalByFeature(ctx, req.FeatureID)
	if err == nil {
		return prop, nil
	}
	if !types.IsNotFound(err) {
		return nil, err
	}
	summary := req.Summary
	if summary == "" {
		summary = fmt.Sprintf("change to feature %s", req.FeatureID)
	}
	return e.newProposal(req, types.ProposalUpdate, req.FeatureID, summary, types.ProposalProposed), nil
}

func (e *Engine) askQuestion(req *Request) (*outcome, error) {
	q := &types.ClarifyingQuestion{
		ID:                "q-" + e.newID(),
		Question:          req.Question,
		Context:           req.QuestionContext,
		RelatedFeatureIDs: append([]string{}, req.RelatedFeatureIDs...),
		Options:           append([]string{}, req.Options...),
		Status:            types.QuestionPending,
		CreatedAt:         e.clock(),
	}
	summary := fmt.Sprintf("%s asked: %s", e.actor, req.Question)
	return &outcome{summary: summary, question: q}, nil
}

func (e *Engine) analyzeImpact(st *graph.Store, req *Request) (*outcome, error) {
	changeType := req.ChangeType
	if changeType == "" {
		changeType = "update"
	}
	report := e.analyzer.Analyze(st, req.FeatureID, changeType, req.TargetFeatureID)
	return &outcome{summary: report.Description, impact: report}, nil
}
