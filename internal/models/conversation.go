package models

import "time"

// Conversation represents the single thread between an unordered pair of
// actors. Participants are stored in canonical actor order (see Actor.Less).
type Conversation struct {
	ID               int       `db:"id" json:"id"`
	Participant1Kind ActorKind `db:"participant1_kind" json:"-"`
	Participant1ID   int       `db:"participant1_id" json:"-"`
	Participant2Kind ActorKind `db:"participant2_kind" json:"-"`
	Participant2ID   int       `db:"participant2_id" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	ModifiedAt       time.Time `db:"modified_at" json:"modified_at"`
}

// Participant1 returns the first participant slot as an Actor.
func (c Conversation) Participant1() Actor {
	return Actor{Kind: c.Participant1Kind, ID: c.Participant1ID}
}

// Participant2 returns the second participant slot as an Actor.
func (c Conversation) Participant2() Actor {
	return Actor{Kind: c.Participant2Kind, ID: c.Participant2ID}
}

// HasParticipant reports whether the actor occupies one of the two slots.
func (c Conversation) HasParticipant(a Actor) bool {
	return c.Participant1().Equal(a) || c.Participant2().Equal(a)
}

// Partner returns the other participant. The second return is false when the
// given actor is not part of the conversation.
func (c Conversation) Partner(a Actor) (Actor, bool) {
	if c.Participant1().Equal(a) {
		return c.Participant2(), true
	}
	if c.Participant2().Equal(a) {
		return c.Participant1(), true
	}
	return Actor{}, false
}

// ConversationSummary provides the API-friendly inbox view of a conversation.
type ConversationSummary struct {
	ConversationID int       `json:"conversation_id"`
	Partner        Actor     `json:"partner"`
	Created        time.Time `json:"created_at"`
	Modified       time.Time `json:"modified_at"`
}
