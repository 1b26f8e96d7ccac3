package postgres

import (
	"context"
	"database/sql"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

// MessagePostgres is a PostgreSQL implementation of repository.MessageRepository.
type MessagePostgres struct {
	db *sql.DB
}

// NewMessagePostgres creates a new MessagePostgres repository.
func NewMessagePostgres(db *sql.DB) *MessagePostgres {
	return &MessagePostgres{db: db}
}

var _ repository.MessageRepository = (*MessagePostgres)(nil)

// ListByConversation returns live messages oldest first with a total count.
func (r *MessagePostgres) ListByConversation(ctx context.Context, conversationID string, pq repository.PageQuery) (*repository.PageResult[model.Message], error) {
	const qCount = `SELECT COUNT(*) FROM messages WHERE conversation_id = $1 AND deleted_at IS NULL`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, conversationID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, conversation_id, sender_id, content, created_at, edited_at
		FROM messages
		WHERE conversation_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, conversationID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Message]{Items: items, Total: total}, nil
}

// Create inserts the message and updates conversation activity and the sender's read marker.
func (r *MessagePostgres) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	stored, err := insertMessage(ctx, tx, msg)
	if err != nil {
		return nil, err
	}

	const qTouch = `UPDATE conversations SET last_message_at = $2, updated_at = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, qTouch, stored.ConversationID, stored.CreatedAt); err != nil {
		return nil, err
	}
	if err := markRead(ctx, tx, stored.ConversationID, stored.SenderID, stored.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// UnreadTotal counts messages newer than the user's read marker in each conversation.
func (r *MessagePostgres) UnreadTotal(ctx context.Context, userID string) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversation_participants p ON p.conversation_id = m.conversation_id
		WHERE p.user_id = $1
		  AND m.deleted_at IS NULL
		  AND (p.last_read_at IS NULL OR m.created_at > p.last_read_at)
	`
	var n int
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
