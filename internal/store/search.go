package store

import (
	"context"
	"strings"

	"github.com/rcliao/eunoia-signals/internal/model"
)

// SearchParams holds parameters for searching messages.
type SearchParams struct {
	ConversationID string
	Sender         model.Sender
	Query          string
	Limit          int
}

// SearchMessages finds messages whose content contains the query substring,
// newest first.
func (s *SQLiteStore) SearchMessages(ctx context.Context, p SearchParams) ([]model.Message, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"content LIKE ? ESCAPE '\\'"}
	args := []interface{}{"%" + escapeLike(p.Query) + "%"}
	if p.ConversationID != "" {
		where = append(where, "conversation_id = ?")
		args = append(args, p.ConversationID)
	}
	if p.Sender != "" {
		where = append(where, "sender = ?")
		args = append(args, string(p.Sender))
	}

	query := `SELECT conversation_id, id, sender, content, timestamp FROM messages
	          WHERE ` + strings.Join(where, " AND ") + `
	          ORDER BY rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
