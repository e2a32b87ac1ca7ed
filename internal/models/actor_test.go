package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActorKind(t *testing.T) {
	kind, ok := ParseActorKind("user")
	require.True(t, ok)
	assert.Equal(t, ActorKindUser, kind)

	kind, ok = ParseActorKind("company")
	require.True(t, ok)
	assert.Equal(t, ActorKindCompany, kind)

	_, ok = ParseActorKind("admin")
	assert.False(t, ok)

	_, ok = ParseActorKind("")
	assert.False(t, ok)
}

func TestActorEqual(t *testing.T) {
	assert.True(t, UserActor(1).Equal(UserActor(1)))
	assert.False(t, UserActor(1).Equal(UserActor(2)))
	// Same id, different kind: never equal.
	assert.False(t, UserActor(1).Equal(CompanyActor(1)))
}

func TestActorLessIsCanonical(t *testing.T) {
	// company < user lexicographically, so companies sort first.
	assert.True(t, CompanyActor(9).Less(UserActor(1)))
	assert.False(t, UserActor(1).Less(CompanyActor(9)))
	assert.True(t, UserActor(1).Less(UserActor(2)))
	assert.False(t, UserActor(2).Less(UserActor(2)))
}

func TestActorValid(t *testing.T) {
	assert.True(t, UserActor(1).Valid())
	assert.False(t, UserActor(0).Valid())
	assert.False(t, Actor{Kind: "robot", ID: 3}.Valid())
	assert.False(t, Actor{}.Valid())
}

func TestActorString(t *testing.T) {
	assert.Equal(t, "company:12", CompanyActor(12).String())
	assert.Equal(t, "user:3", UserActor(3).String())
}
