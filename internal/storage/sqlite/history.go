package sqlite

import (
	"context"
	"fmt"

	"github.com/featuregraph/fg/internal/types"
)

// AppendHistory inserts an audit entry. History rows are append-only.
func (s *SQLiteStore) AppendHistory(ctx context.Context, entry *types.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (proposal_id, action, timestamp, summary)
		VALUES (?, ?, ?, ?)
	`, entry.ProposalID, entry.Action, formatTime(entry.Timestamp), entry.Summary)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ListHistory returns history entries, newest first. limit <= 0 returns
// all entries.
func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]*types.HistoryEntry, error) {
	query := `
		SELECT proposal_id, action, timestamp, summary
		FROM history
		ORDER BY id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []*types.HistoryEntry
	for rows.Next() {
		var entry types.HistoryEntry
		var ts string
		if err := rows.Scan(&entry.ProposalID, &entry.Action, &ts, &entry.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if entry.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
