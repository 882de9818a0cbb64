package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string       `json:"db_path"`
	DBSizeBytes   int64        `json:"db_size_bytes"`
	Conversations int          `json:"conversations"`
	Messages      int          `json:"messages"`
	UserMessages  int          `json:"user_messages"`
	Assessments   int          `json:"assessments"`
	Levels        []LevelStats `json:"levels"`
}

// LevelStats holds the number of assessments at a level.
type LevelStats struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Levels: []LevelStats{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&st.Conversations)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.Messages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE sender = 'user'`).Scan(&st.UserMessages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&st.Assessments)

	rows, err := s.db.QueryContext(ctx, `
		SELECT level, COUNT(*) AS cnt FROM assessments
		GROUP BY level ORDER BY cnt DESC, level`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var l LevelStats
		if err := rows.Scan(&l.Level, &l.Count); err != nil {
			return st, err
		}
		st.Levels = append(st.Levels, l)
	}
	return st, rows.Err()
}
