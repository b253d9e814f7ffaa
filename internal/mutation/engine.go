package mutation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/featuregraph/fg/internal/graph"
	"github.com/featuregraph/fg/internal/impact"
	"github.com/featuregraph/fg/internal/storage"
	"github.com/featuregraph/fg/internal/types"
)

// Persister writes a graph file to durable storage. Satisfied by
// *persist.Coordinator; tests substitute their own.
type Persister interface {
	Persist(ctx context.Context, file *types.GraphFile, workspace string) error
}

// Options configures an Engine.
type Options struct {
	// Workspace is the workspace root passed through to the persister.
	Workspace string

	// Persister writes successor graph files. Nil disables persistence
	// (hermetic mode: snapshots still advance in memory).
	Persister Persister

	// Audit records history, proposals and questions. Nil defaults to
	// an in-memory store.
	Audit storage.Store

	// Analyzer answers analyze_impact requests. Nil defaults to a
	// fresh analyzer.
	Analyzer *impact.Analyzer

	// Actor is recorded in mutation summaries. Empty means "agent".
	Actor string

	// Clock and NewID are injectable for tests.
	Clock func() time.Time
	NewID func() string
}

// Engine applies mutation requests. It holds no graph state itself;
// callers thread the current snapshot through Apply and adopt the
// returned successor.
type Engine struct {
	workspace string
	persister Persister
	audit     storage.Store
	analyzer  *impact.Analyzer
	actor     string
	clock     func() time.Time
	newID     func() string
}

// New creates a mutation engine.
func New(opts Options) *Engine {
	e := &Engine{
		workspace: opts.Workspace,
		persister: opts.Persister,
		audit:     opts.Audit,
		analyzer:  opts.Analyzer,
		actor:     opts.Actor,
		clock:     opts.Clock,
		newID:     opts.NewID,
	}
	if e.audit == nil {
		e.audit = storage.NewMemoryStore()
	}
	if e.analyzer == nil {
		e.analyzer = impact.NewAnalyzer()
	}
	if e.actor == "" {
		e.actor = "agent"
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Analyzer exposes the engine's impact analyzer so a UI can render the
// history of analyzed-but-not-applied changes.
func (e *Engine) Analyzer() *impact.Analyzer {
	return e.analyzer
}

// Result reports the outcome of one request. Err is set when the
// request failed validation or application; the other fields describe
// what a successful request produced.
type Result struct {
	Request Request

	// Summary is the human-readable outcome, including soft no-op
	// messages ("already connected", "no connection found").
	Summary string

	// Applied reports whether the request changed the graph.
	Applied bool

	Proposal *types.Proposal
	Question *types.ClarifyingQuestion
	Impact   *impact.Report

	// Mark-ready partial results.
	ReadyIDs   []string
	InvalidIDs []string

	Err error
}

// outcome is a handler's description of what should happen: an optional
// successor graph file plus the result fields to report.
type outcome struct {
	file     *types.GraphFile
	summary  string
	proposal *types.Proposal
	question *types.ClarifyingQuestion
	impact   *impact.Report
	readyIDs []string
	invalid  []string
}

// Apply runs requests in order against the snapshot, threading each
// successor into the next request. Per-request failures (validation,
// unknown ids, conflicts) are isolated: the failing request reports an
// error in its Result and later requests still run against the last
// good snapshot. Persistence and audit I/O failures abort the batch;
// the returned error is non-nil and the returned snapshot is the last
// one that was durably persisted.
func (e *Engine) Apply(ctx context.Context, st *graph.Store, reqs ...Request) (*graph.Store, []Result, error) {
	if st == nil {
		st = graph.Empty()
	}
	results := make([]Result, 0, len(reqs))

	for _, req := range reqs {
		res := Result{Request: req}

		if err := req.Validate(); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		out, err := e.dispatch(ctx, st, &req)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		res.Summary = out.summary
		res.Proposal = out.proposal
		res.Question = out.question
		res.Impact = out.impact
		res.ReadyIDs = out.readyIDs
		res.InvalidIDs = out.invalid

		if out.file != nil {
			next, err := graph.New(out.file)
			if err != nil {
				res.Err = err
				results = append(results, res)
				continue
			}
			if e.persister != nil {
				if err := e.persister.Persist(ctx, out.file, e.workspace); err != nil {
					res.Err = err
					results = append(results, res)
					return st, results, err
				}
			}
			st = next
			res.Applied = true
		}

		if err := e.record(ctx, &req, out); err != nil {
			res.Err = err
			results = append(results, res)
			return st, results, err
		}

		results = append(results, res)
	}

	return st, results, nil
}

// record writes the audit side of an applied request: the proposal (if
// any), the question (if any), and the history entry. Advisory requests
// (analyze_impact, reply_without_change) leave no history.
func (e *Engine) record(ctx context.Context, req *Request, out *outcome) error {
	if out.proposal != nil {
		if err := e.audit.SaveProposal(ctx, out.proposal); err != nil {
			return err
		}
	}
	if out.question != nil {
		if err := e.audit.SaveQuestion(ctx, out.question); err != nil {
			return err
		}
	}
	if req.Type == RequestAnalyzeImpact || req.Type == RequestReplyWithoutChange {
		return nil
	}

	entry := &types.HistoryEntry{
		Action:    string(req.Type),
		Timestamp: e.clock(),
		Summary:   out.summary,
	}
	if out.proposal != nil {
		entry.ProposalID = out.proposal.ID
	}
	return e.audit.AppendHistory(ctx, entry)
}

func (e *Engine) dispatch(ctx context.Context, st *graph.Store, req *Request) (*outcome, error) {
	switch req.Type {
	case RequestCreateFeature:
		return e.createFeature(st, req)
	case RequestUpdateFeature:
		return e.updateFeature(st, req)
	case RequestConnectFeatures:
		return e.connectFeatures(st, req)
	case RequestDisconnectFeatures:
		return e.disconnectFeatures(st, req)
	case RequestMarkReady:
		return e.markReady(st, req)
	case RequestProposeChange:
		return e.proposeChange(st, req)
	case RequestApproveChange:
		return e.resolveChange(ctx, st, req, true)
	case RequestRejectChange:
		return e.resolveChange(ctx, st, req, false)
	case RequestAskQuestion:
		return e.askQuestion(req)
	case RequestAnalyzeImpact:
		return e.analyzeImpact(st, req)
	case RequestReplyWithoutChange:
		return &outcome{summary: req.Reply}, nil
	}
	return nil, &types.ValidationError{Message: fmt.Sprintf("unhandled request type %q", req.Type)}
}

// newProposal builds a resolved-or-pending proposal record tied to a
// request. Structural mutations synthesize an already-approved proposal
// so history entries always link to one.
func (e *Engine) newProposal(req *Request, typ types.ProposalType, featureID, summary string, status types.ProposalStatus) *types.Proposal {
	now := e.clock()
	return &types.Proposal{
		ID:        "prop-" + e.newID(),
		Type:      typ,
		FeatureID: featureID,
		Summary:   summary,
		Rationale: req.Rationale,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sortedCopy(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}
