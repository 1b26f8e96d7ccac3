package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

// ConversationPostgres is a PostgreSQL implementation of repository.ConversationRepository.
type ConversationPostgres struct {
	db *sql.DB
}

// NewConversationPostgres creates a new ConversationPostgres repository.
func NewConversationPostgres(db *sql.DB) *ConversationPostgres {
	return &ConversationPostgres{db: db}
}

var _ repository.ConversationRepository = (*ConversationPostgres)(nil)

const conversationColumns = `c.id, c.context_type, c.context_id, c.created_by, c.created_at, c.updated_at, c.last_message_at`

func scanConversation(s rowScanner) (*model.Conversation, error) {
	var c model.Conversation
	if err := s.Scan(
		&c.ID,
		&c.ContextType,
		&c.ContextID,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.LastMessageAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanMessage(s rowScanner) (*model.Message, error) {
	var m model.Message
	if err := s.Scan(
		&m.ID,
		&m.ConversationID,
		&m.SenderID,
		&m.Content,
		&m.CreatedAt,
		&m.EditedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForUser returns the user's conversations using LIMIT/OFFSET pagination and a total count.
func (r *ConversationPostgres) ListForUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Conversation], error) {
	const qCount = `SELECT COUNT(*) FROM conversation_participants WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + conversationColumns + `
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.last_message_at DESC NULLS LAST, c.updated_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Conversation]{Items: items, Total: total}, nil
}

// Participants returns participants of the given conversations with profile fields.
func (r *ConversationPostgres) Participants(ctx context.Context, conversationIDs []string) ([]model.Participant, error) {
	const q = `
		SELECT p.conversation_id, p.user_id, p.joined_at, p.last_read_at,
		       COALESCE(pr.full_name, ''), COALESCE(pr.email, ''), COALESCE(pr.role, '')
		FROM conversation_participants p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		WHERE p.conversation_id = ANY($1::uuid[])
		ORDER BY p.conversation_id, p.joined_at
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(conversationIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Participant, 0)
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(
			&p.ConversationID,
			&p.UserID,
			&p.JoinedAt,
			&p.LastReadAt,
			&p.FullName,
			&p.Email,
			&p.Role,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestMessages returns the newest live message of each conversation.
func (r *ConversationPostgres) LatestMessages(ctx context.Context, conversationIDs []string) ([]model.Message, error) {
	const q = `
		SELECT DISTINCT ON (conversation_id) id, conversation_id, sender_id, content, created_at, edited_at
		FROM messages
		WHERE conversation_id = ANY($1::uuid[]) AND deleted_at IS NULL
		ORDER BY conversation_id, created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(conversationIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// MessageStamps returns (conversation, created_at) for every live message.
func (r *ConversationPostgres) MessageStamps(ctx context.Context, conversationIDs []string) ([]model.MessageStamp, error) {
	const q = `
		SELECT conversation_id, created_at
		FROM messages
		WHERE conversation_id = ANY($1::uuid[]) AND deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(conversationIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.MessageStamp, 0)
	for rows.Next() {
		var s model.MessageStamp
		if err := rows.Scan(&s.ConversationID, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindBetween returns the most recent conversation shared by both users.
func (r *ConversationPostgres) FindBetween(ctx context.Context, userA, userB string) (string, error) {
	const q = `
		SELECT a.conversation_id
		FROM conversation_participants a
		JOIN conversation_participants b ON b.conversation_id = a.conversation_id
		WHERE a.user_id = $1 AND b.user_id = $2
		ORDER BY a.joined_at DESC
		LIMIT 1
	`
	var id string
	if err := r.db.QueryRowContext(ctx, q, userA, userB).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Create opens the conversation and stores its first message atomically.
func (r *ConversationPostgres) Create(ctx context.Context, nc repository.NewConversation) (*model.Conversation, *model.Message, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer rollback(tx)

	var convID string
	const qCreate = `SELECT create_conversation_with_participants($1, $2::uuid[], $3, $4)`
	if err := tx.QueryRowContext(ctx, qCreate,
		nc.CreatedBy,
		pq.Array(nc.ParticipantIDs),
		nc.ContextType,
		nc.ContextID,
	).Scan(&convID); err != nil {
		return nil, nil, err
	}

	msg, err := insertMessage(ctx, tx, &model.Message{
		ConversationID: convID,
		SenderID:       nc.CreatedBy,
		Content:        nc.InitialMessage,
		CreatedAt:      nc.SentAt,
	})
	if err != nil {
		return nil, nil, err
	}

	const qTouch = `
		UPDATE conversations c SET last_message_at = $2, updated_at = $2
		WHERE c.id = $1
		RETURNING ` + conversationColumns
	conv, err := scanConversation(tx.QueryRowContext(ctx, qTouch, convID, msg.CreatedAt))
	if err != nil {
		return nil, nil, err
	}

	if err := markRead(ctx, tx, convID, nc.CreatedBy, msg.CreatedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return conv, msg, nil
}

// FindForUser fetches a conversation the user participates in.
func (r *ConversationPostgres) FindForUser(ctx context.Context, id, userID string) (*model.Conversation, error) {
	const q = `
		SELECT ` + conversationColumns + `
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE c.id = $1 AND p.user_id = $2
	`
	return scanConversation(r.db.QueryRowContext(ctx, q, id, userID))
}

// MarkRead sets last_read_at for the participant; sql.ErrNoRows when not a participant.
func (r *ConversationPostgres) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	return markRead(ctx, r.db, id, userID, at)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func markRead(ctx context.Context, db execer, conversationID, userID string, at time.Time) error {
	const q = `UPDATE conversation_participants SET last_read_at = $3 WHERE conversation_id = $1 AND user_id = $2`
	res, err := db.ExecContext(ctx, q, conversationID, userID, at)
	if err != nil {
		return err
	}
	return affectedOrNoRows(res)
}

func insertMessage(ctx context.Context, db queryRower, m *model.Message) (*model.Message, error) {
	const q = `
		INSERT INTO messages (conversation_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, sender_id, content, created_at, edited_at
	`
	return scanMessage(db.QueryRowContext(ctx, q, m.ConversationID, m.SenderID, m.Content, m.CreatedAt))
}
