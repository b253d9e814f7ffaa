package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/featuregraph/fg/internal/types"
)

// SaveProposal inserts or replaces a proposal by id.
func (s *SQLiteStore) SaveProposal(ctx context.Context, p *types.Proposal) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, type, feature_id, summary, rationale, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			feature_id = excluded.feature_id,
			summary = excluded.summary,
			rationale = excluded.rationale,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, p.ID, string(p.Type), p.FeatureID, p.Summary, p.Rationale, string(p.Status),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save proposal %s: %w", p.ID, err)
	}
	return nil
}

// GetProposal returns the proposal with the given id.
func (s *SQLiteStore) GetProposal(ctx context.Context, id string) (*types.Proposal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, feature_id, summary, rationale, status, created_at, updated_at
		FROM proposals
		WHERE id = ?
	`, id)
	p, err := scanProposal(row)
	if err == sql.ErrNoRows {
		return nil, &types.NotFoundError{Kind: "proposal", ID: id}
	}
	return p, err
}

// FindProposalByFeature returns the newest unresolved proposal for the
// feature id, falling back to the newest resolved one.
func (s *SQLiteStore) FindProposalByFeature(ctx context.Context, featureID string) (*types.Proposal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, feature_id, summary, rationale, status, created_at, updated_at
		FROM proposals
		WHERE feature_id = ?
		ORDER BY (status IN ('pending', 'proposed')) DESC, created_at DESC
		LIMIT 1
	`, featureID)
	p, err := scanProposal(row)
	if err == sql.ErrNoRows {
		return nil, &types.NotFoundError{Kind: "proposal", ID: featureID}
	}
	return p, err
}

// ListProposals returns proposals, newest first, optionally filtered by
// status ("" matches all).
func (s *SQLiteStore) ListProposals(ctx context.Context, status types.ProposalStatus) ([]*types.Proposal, error) {
	query := `
		SELECT id, type, feature_id, summary, rationale, status, created_at, updated_at
		FROM proposals
	`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	var out []*types.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProposal(row rowScanner) (*types.Proposal, error) {
	var p types.Proposal
	var typ, status, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &typ, &p.FeatureID, &p.Summary, &p.Rationale, &status, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan proposal row: %w", err)
	}
	p.Type = types.ProposalType(typ)
	p.Status = types.ProposalStatus(status)
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
