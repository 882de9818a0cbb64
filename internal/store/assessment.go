package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// SaveAssessmentParams holds parameters for storing an assessment.
type SaveAssessmentParams struct {
	ConversationID string
	Level          string
	Score          float64
	Body           []byte
}

// AssessmentListParams holds parameters for listing assessments.
type AssessmentListParams struct {
	ConversationID string
	Levels         []string
	Limit          int
}

// SaveAssessment stores an assessment of an existing conversation.
func (s *SQLiteStore) SaveAssessment(ctx context.Context, p SaveAssessmentParams) (*model.AssessmentRecord, error) {
	if _, err := s.GetConversation(ctx, p.ConversationID); err != nil {
		return nil, err
	}
	rec := &model.AssessmentRecord{
		ID:             s.newID(),
		ConversationID: p.ConversationID,
		Level:          p.Level,
		Score:          p.Score,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		Body:           p.Body,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, conversation_id, level, score, created_at, body)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ConversationID, rec.Level, rec.Score, rec.CreatedAt.Format(time.RFC3339), string(p.Body))
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	return rec, nil
}

// ListAssessments returns stored assessments, newest first.
func (s *SQLiteStore) ListAssessments(ctx context.Context, p AssessmentListParams) ([]model.AssessmentRecord, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	args := []interface{}{}
	if p.ConversationID != "" {
		where = append(where, "conversation_id = ?")
		args = append(args, p.ConversationID)
	}
	if len(p.Levels) > 0 {
		where = append(where, "level IN (?"+strings.Repeat(", ?", len(p.Levels)-1)+")")
		for _, l := range p.Levels {
			args = append(args, l)
		}
	}

	query := `SELECT id, conversation_id, level, score, created_at, body FROM assessments
	          WHERE ` + strings.Join(where, " AND ") + `
	          ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.AssessmentRecord
	for rows.Next() {
		var r model.AssessmentRecord
		var createdAt string
		var body sql.NullString
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.Level, &r.Score, &createdAt, &body); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if body.Valid && body.String != "" {
			r.Body = []byte(body.String)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
