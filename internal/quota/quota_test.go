package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func companyUserConversation(id, companyID, userID int) models.Conversation {
	return models.Conversation{
		ID:               id,
		Participant1Kind: models.ActorKindCompany,
		Participant1ID:   companyID,
		Participant2Kind: models.ActorKindUser,
		Participant2ID:   userID,
	}
}

func TestAllowUserSenderSkipsQuota(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: time.Now}

	err := gate.Allow(context.Background(), models.UserActor(3), companyUserConversation(1, 7, 3))
	require.NoError(t, err)
	actors.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestAllowFreePlanBoundary(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	company := models.CompanyActor(7)
	conv := companyUserConversation(1, 7, 3)

	// First distinct user of the month passes.
	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: fixedClock(now)}

	actors.On("CompanyPlan", mock.Anything, 7).Return(models.PlanFree, nil).Once()
	messages.On("HasContactedConversationSince", mock.Anything, 1, company, monthStart).Return(false, nil).Once()
	messages.On("CountDistinctUsersContactedSince", mock.Anything, 7, monthStart).Return(0, nil).Once()

	require.NoError(t, gate.Allow(context.Background(), company, conv))
	actors.AssertExpectations(t)
	messages.AssertExpectations(t)

	// Second distinct user in the same month is rejected.
	actors = new(mocks.ActorRepositoryMock)
	messages = new(mocks.MessageRepositoryMock)
	gate = &Gate{actors: actors, messages: messages, now: fixedClock(now)}

	actors.On("CompanyPlan", mock.Anything, 7).Return(models.PlanFree, nil).Once()
	messages.On("HasContactedConversationSince", mock.Anything, 2, company, monthStart).Return(false, nil).Once()
	messages.On("CountDistinctUsersContactedSince", mock.Anything, 7, monthStart).Return(1, nil).Once()

	err := gate.Allow(context.Background(), company, companyUserConversation(2, 7, 4))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestAllowAlreadyContactedUserIsFree(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	company := models.CompanyActor(7)

	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: fixedClock(now)}

	actors.On("CompanyPlan", mock.Anything, 7).Return(models.PlanFree, nil).Once()
	messages.On("HasContactedConversationSince", mock.Anything, 1, company, monthStart).Return(true, nil).Once()

	require.NoError(t, gate.Allow(context.Background(), company, companyUserConversation(1, 7, 3)))
	// The distinct-user count must not even be consulted.
	messages.AssertNotCalled(t, "CountDistinctUsersContactedSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestAllowQuotaResetsNextMonth(t *testing.T) {
	company := models.CompanyActor(7)
	april := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	aprilStart := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: fixedClock(april)}

	// March usage is invisible: the window starts at April 1.
	actors.On("CompanyPlan", mock.Anything, 7).Return(models.PlanFree, nil).Once()
	messages.On("HasContactedConversationSince", mock.Anything, 3, company, aprilStart).Return(false, nil).Once()
	messages.On("CountDistinctUsersContactedSince", mock.Anything, 7, aprilStart).Return(0, nil).Once()

	require.NoError(t, gate.Allow(context.Background(), company, companyUserConversation(3, 7, 5)))
	messages.AssertExpectations(t)
}

func TestAllowEnterpriseUnlimited(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: time.Now}

	actors.On("CompanyPlan", mock.Anything, 7).Return(models.PlanEnterprise, nil).Once()

	require.NoError(t, gate.Allow(context.Background(), models.CompanyActor(7), companyUserConversation(1, 7, 3)))
	messages.AssertNotCalled(t, "HasContactedConversationSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	messages.AssertNotCalled(t, "CountDistinctUsersContactedSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestAllowCompanyToCompanySkipsQuota(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: time.Now}

	actors.On("CompanyPlan", mock.Anything, 7).Return(models.PlanFree, nil).Once()

	conv := models.Conversation{
		ID:               4,
		Participant1Kind: models.ActorKindCompany,
		Participant1ID:   7,
		Participant2Kind: models.ActorKindCompany,
		Participant2ID:   8,
	}
	require.NoError(t, gate.Allow(context.Background(), models.CompanyActor(7), conv))
	messages.AssertNotCalled(t, "HasContactedConversationSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAllowUnknownPlan(t *testing.T) {
	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: time.Now}

	actors.On("CompanyPlan", mock.Anything, 7).Return(models.Plan("gold"), nil).Once()

	err := gate.Allow(context.Background(), models.CompanyActor(7), companyUserConversation(1, 7, 3))
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestUsage(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	actors := new(mocks.ActorRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	gate := &Gate{actors: actors, messages: messages, now: fixedClock(now)}

	actors.On("CompanyPlan", mock.Anything, 7).Return(models.PlanPro, nil).Once()
	messages.On("CountDistinctUsersContactedSince", mock.Anything, 7, monthStart).Return(42, nil).Once()

	usage, err := gate.Usage(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, usage.Plan)
	assert.Equal(t, 100, usage.Limit)
	assert.Equal(t, 42, usage.Used)
	assert.False(t, usage.Unlimited)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), usage.ResetsAt)
}

func TestMonthStart(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	ts := time.Date(2026, time.January, 31, 23, 59, 0, 0, loc)
	start := MonthStart(ts)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, loc, start.Location())
}
