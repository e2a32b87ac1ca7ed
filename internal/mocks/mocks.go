package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) FindOrCreate(ctx context.Context, self models.Actor, partner models.Actor) (models.Conversation, error) {
	args := m.Called(ctx, self, partner)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) Get(ctx context.Context, conversationID int) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListForActor(ctx context.Context, actor models.Actor) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, actor)
	var list []models.ConversationSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationSummary)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, conversationID int, sender models.Actor, content string) (models.Message, error) {
	args := m.Called(ctx, conversationID, sender, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, conversationID int, beforeID int, limit int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, beforeID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int, sender models.Actor) error {
	args := m.Called(ctx, messageID, sender)
	return args.Error(0)
}

func (m *MessageRepositoryMock) HasContactedConversationSince(ctx context.Context, conversationID int, sender models.Actor, since time.Time) (bool, error) {
	args := m.Called(ctx, conversationID, sender, since)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) CountDistinctUsersContactedSince(ctx context.Context, companyID int, since time.Time) (int, error) {
	args := m.Called(ctx, companyID, since)
	return args.Int(0), args.Error(1)
}

type ActorRepositoryMock struct {
	mock.Mock
}

func (m *ActorRepositoryMock) UserExists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ActorRepositoryMock) CompanyExists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ActorRepositoryMock) CompanyPlan(ctx context.Context, id int) (models.Plan, error) {
	args := m.Called(ctx, id)
	var plan models.Plan
	if val := args.Get(0); val != nil {
		plan = val.(models.Plan)
	}
	return plan, args.Error(1)
}

type SendLimiterMock struct {
	mock.Mock
}

func (m *SendLimiterMock) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// PublisherMock stands in for the audit publisher.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ActorRepository = (*ActorRepositoryMock)(nil)
var _ middleware.SendLimiter = (*SendLimiterMock)(nil)
