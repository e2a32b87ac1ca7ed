package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messaging-service/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSelfConversation     = errors.New("cannot start a conversation with yourself")
)

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	FindOrCreate(ctx context.Context, self models.Actor, partner models.Actor) (models.Conversation, error)
	Get(ctx context.Context, conversationID int) (models.Conversation, error)
	ListForActor(ctx context.Context, actor models.Actor) ([]models.ConversationSummary, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// orderParticipants returns the pair in canonical actor order. The unique
// constraint on the conversations table spans the ordered pair, so both
// argument orders resolve to the same row.
func orderParticipants(a, b models.Actor) (models.Actor, models.Actor) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}

const conversationColumns = `id, participant1_kind, participant1_id, participant2_kind, participant2_id, created_at, modified_at`

// FindOrCreate returns the conversation between the two actors, creating it
// on first contact. A unique violation on insert means a concurrent request
// created the row first; it is re-fetched instead of surfaced as an error.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, self models.Actor, partner models.Actor) (models.Conversation, error) {
	if self.Equal(partner) {
		return models.Conversation{}, ErrSelfConversation
	}
	p1, p2 := orderParticipants(self, partner)

	conv, err := r.getByPair(ctx, p1, p2)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO conversations (participant1_kind, participant1_id, participant2_kind, participant2_id)
         VALUES ($1, $2, $3, $4) RETURNING `+conversationColumns,
		p1.Kind, p1.ID, p2.Kind, p2.ID).StructScan(&conv)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return r.getByPair(ctx, p1, p2)
		}
		return models.Conversation{}, err
	}
	return conv, nil
}

func (r *ConversationRepo) getByPair(ctx context.Context, p1, p2 models.Actor) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv,
		`SELECT `+conversationColumns+` FROM conversations
         WHERE participant1_kind=$1 AND participant1_id=$2 AND participant2_kind=$3 AND participant2_id=$4`,
		p1.Kind, p1.ID, p2.Kind, p2.ID)
	return conv, err
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, conversationID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv,
		`SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListForActor returns the actor's conversations, most recently active first.
func (r *ConversationRepo) ListForActor(ctx context.Context, actor models.Actor) ([]models.ConversationSummary, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations
         WHERE (participant1_kind=$1 AND participant1_id=$2) OR (participant2_kind=$1 AND participant2_id=$2)
         ORDER BY modified_at DESC`,
		actor.Kind, actor.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ConversationSummary
	for rows.Next() {
		var conv models.Conversation
		if err := rows.StructScan(&conv); err != nil {
			return nil, err
		}
		partner, ok := conv.Partner(actor)
		if !ok {
			continue
		}
		result = append(result, models.ConversationSummary{
			ConversationID: conv.ID,
			Partner:        partner,
			Created:        conv.CreatedAt,
			Modified:       conv.ModifiedAt,
		})
	}
	return result, rows.Err()
}
