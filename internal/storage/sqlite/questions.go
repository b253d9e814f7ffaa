package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/featuregraph/fg/internal/types"
)

// SaveQuestion inserts or replaces a clarifying question by id.
func (s *SQLiteStore) SaveQuestion(ctx context.Context, q *types.ClarifyingQuestion) error {
	if err := q.Validate(); err != nil {
		return err
	}
	related, err := json.Marshal(orEmpty(q.RelatedFeatureIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal related feature ids: %w", err)
	}
	options, err := json.Marshal(orEmpty(q.Options))
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (id, question, context, related_feature_ids, options, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question = excluded.question,
			context = excluded.context,
			related_feature_ids = excluded.related_feature_ids,
			options = excluded.options,
			status = excluded.status
	`, q.ID, q.Question, q.Context, string(related), string(options), string(q.Status), formatTime(q.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save question %s: %w", q.ID, err)
	}
	return nil
}

// ListQuestions returns questions, newest first, optionally filtered by
// status ("" matches all).
func (s *SQLiteStore) ListQuestions(ctx context.Context, status types.QuestionStatus) ([]*types.ClarifyingQuestion, error) {
	query := `
		SELECT id, question, context, related_feature_ids, options, status, created_at
		FROM questions
	`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var out []*types.ClarifyingQuestion
	for rows.Next() {
		var q types.ClarifyingQuestion
		var related, options, st, createdAt string
		if err := rows.Scan(&q.ID, &q.Question, &q.Context, &related, &options, &st, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		if err := json.Unmarshal([]byte(related), &q.RelatedFeatureIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal related feature ids: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal options: %w", err)
		}
		q.Status = types.QuestionStatus(st)
		if q.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
