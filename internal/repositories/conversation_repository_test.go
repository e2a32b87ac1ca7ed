package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func TestFindOrCreateRejectsSelfConversation(t *testing.T) {
	repo := NewConversationRepo(nil)

	_, err := repo.FindOrCreate(context.Background(), models.UserActor(1), models.UserActor(1))
	require.ErrorIs(t, err, ErrSelfConversation)

	_, err = repo.FindOrCreate(context.Background(), models.CompanyActor(4), models.CompanyActor(4))
	require.ErrorIs(t, err, ErrSelfConversation)
}

func TestOrderParticipantsIsCanonical(t *testing.T) {
	user := models.UserActor(1)
	company := models.CompanyActor(9)

	p1, p2 := orderParticipants(user, company)
	q1, q2 := orderParticipants(company, user)

	// Both argument orders must map to the same stored pair.
	assert.Equal(t, p1, q1)
	assert.Equal(t, p2, q2)
	assert.Equal(t, company, p1)
	assert.Equal(t, user, p2)

	// Same kind orders by id.
	p1, p2 = orderParticipants(models.UserActor(5), models.UserActor(2))
	assert.Equal(t, models.UserActor(2), p1)
	assert.Equal(t, models.UserActor(5), p2)
}
