package models

import "fmt"

// ActorKind distinguishes the two account types that can participate in
// messaging: students ("user") and companies ("company").
type ActorKind string

const (
	ActorKindUser    ActorKind = "user"
	ActorKindCompany ActorKind = "company"
)

// ParseActorKind validates a kind string coming from a token claim or request body.
func ParseActorKind(s string) (ActorKind, bool) {
	switch ActorKind(s) {
	case ActorKindUser:
		return ActorKindUser, true
	case ActorKindCompany:
		return ActorKindCompany, true
	}
	return "", false
}

// Actor is a tagged participant identity. Everywhere either a user or a
// company may act (conversations, messages), an Actor is passed instead of a
// bare id so the two namespaces can never be confused.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   int       `json:"id"`
}

// UserActor builds a user-kind actor.
func UserActor(id int) Actor {
	return Actor{Kind: ActorKindUser, ID: id}
}

// CompanyActor builds a company-kind actor.
func CompanyActor(id int) Actor {
	return Actor{Kind: ActorKindCompany, ID: id}
}

// Valid reports whether the actor has a known kind and a positive id.
func (a Actor) Valid() bool {
	return a.ID > 0 && (a.Kind == ActorKindUser || a.Kind == ActorKindCompany)
}

// Equal compares actors by kind and id.
func (a Actor) Equal(other Actor) bool {
	return a.Kind == other.Kind && a.ID == other.ID
}

// Less orders actors canonically, kind first then id. Conversation
// participant pairs are stored in this order so each unordered pair maps to
// exactly one row.
func (a Actor) Less(other Actor) bool {
	if a.Kind != other.Kind {
		return a.Kind < other.Kind
	}
	return a.ID < other.ID
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%d", a.Kind, a.ID)
}
