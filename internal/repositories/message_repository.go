package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for conversation messages, including
// the queries the contact-quota gate derives its counts from.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID int, sender models.Actor, content string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID int, beforeID int, limit int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID int, sender models.Actor) error
	HasContactedConversationSince(ctx context.Context, conversationID int, sender models.Actor, since time.Time) (bool, error)
	CountDistinctUsersContactedSince(ctx context.Context, companyID int, since time.Time) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_id, sender_kind, sender_id, content, created_at`

// CreateMessage stores a message and bumps the conversation's modified_at in
// a single transaction.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID int, sender models.Actor, content string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO messages (conversation_id, sender_kind, sender_id, content)
         VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		conversationID, sender.Kind, sender.ID, content).StructScan(&msg)
	if err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET modified_at = NOW() WHERE id=$1`, conversationID); err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns up to limit messages of the conversation in ascending
// id order. A positive beforeID restricts the page to ids strictly below it.
// Rows whose content is blank are skipped; legacy imports left a handful of
// whitespace-only messages behind.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID int, beforeID int, limit int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE conversation_id=$1 AND btrim(content, E' \t\n\r') <> ''`
	args := []interface{}{conversationID}
	if beforeID > 0 {
		query += ` AND id < $2 ORDER BY id DESC LIMIT $3`
		args = append(args, beforeID, limit)
	} else {
		query += ` ORDER BY id DESC LIMIT $2`
		args = append(args, limit)
	}

	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, query, args...); err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteMessage removes a message. The sender match is part of the predicate
// so a stale id or a foreign sender both surface as not-found.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int, sender models.Actor) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id=$1 AND sender_kind=$2 AND sender_id=$3`,
		messageID, sender.Kind, sender.ID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// HasContactedConversationSince reports whether the sender already posted to
// the conversation at or after the given instant.
func (r *MessageRepo) HasContactedConversationSince(ctx context.Context, conversationID int, sender models.Actor, since time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM messages
         WHERE conversation_id=$1 AND sender_kind=$2 AND sender_id=$3 AND created_at >= $4)`,
		conversationID, sender.Kind, sender.ID, since)
	return exists, err
}

// CountDistinctUsersContactedSince counts the distinct user partners the
// company has sent at least one message to at or after the given instant.
// Conversations with non-user partners do not count.
func (r *MessageRepo) CountDistinctUsersContactedSince(ctx context.Context, companyID int, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(DISTINCT CASE WHEN c.participant1_kind = 'user' THEN c.participant1_id ELSE c.participant2_id END)
         FROM messages m
         JOIN conversations c ON c.id = m.conversation_id
         WHERE m.sender_kind = 'company' AND m.sender_id = $1 AND m.created_at >= $2
           AND ((c.participant1_kind = 'user' AND c.participant2_kind = 'company' AND c.participant2_id = $1)
             OR (c.participant2_kind = 'user' AND c.participant1_kind = 'company' AND c.participant1_id = $1))`,
		companyID, since)
	return count, err
}
