// Package quota enforces per-plan monthly contact limits for company
// senders. A company "spends" one contact the first time it messages a given
// user in a calendar month; further messages to the same user that month are
// free. Usage is re-derived from message history on every check rather than
// kept as a running counter, so it stays correct when messages are deleted.
package quota

import (
	"context"
	"errors"
	"time"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

var (
	ErrQuotaExceeded = errors.New("monthly contact limit reached")
	ErrUnknownPlan   = errors.New("unknown plan")
)

// Gate checks whether a send is allowed under the sender's contact quota.
type Gate struct {
	actors   repositories.ActorRepository
	messages repositories.MessageRepository
	now      func() time.Time
}

// NewGate constructs a Gate using the wall clock.
func NewGate(actors repositories.ActorRepository, messages repositories.MessageRepository) *Gate {
	return &Gate{actors: actors, messages: messages, now: time.Now}
}

// Allow reports whether the sender may post the next message in the
// conversation. Only company-to-user first contacts of the current month
// consume quota; user senders and company-to-company conversations pass
// unconditionally.
func (g *Gate) Allow(ctx context.Context, sender models.Actor, conv models.Conversation) error {
	if sender.Kind != models.ActorKindCompany {
		return nil
	}

	plan, err := g.actors.CompanyPlan(ctx, sender.ID)
	if err != nil {
		return err
	}
	limit, ok := models.ContactLimit(plan)
	if !ok {
		return ErrUnknownPlan
	}
	if limit == 0 {
		return nil
	}

	partner, ok := conv.Partner(sender)
	if !ok || partner.Kind != models.ActorKindUser {
		return nil
	}

	monthStart := MonthStart(g.now())
	contacted, err := g.messages.HasContactedConversationSince(ctx, conv.ID, sender, monthStart)
	if err != nil {
		return err
	}
	if contacted {
		return nil
	}

	used, err := g.messages.CountDistinctUsersContactedSince(ctx, sender.ID, monthStart)
	if err != nil {
		return err
	}
	if used >= limit {
		return ErrQuotaExceeded
	}
	return nil
}

// Usage is the current quota standing of a company.
type Usage struct {
	Plan      models.Plan
	Limit     int
	Used      int
	Unlimited bool
	ResetsAt  time.Time
}

// Usage returns the company's plan, limit and month-to-date consumption.
func (g *Gate) Usage(ctx context.Context, companyID int) (Usage, error) {
	plan, err := g.actors.CompanyPlan(ctx, companyID)
	if err != nil {
		return Usage{}, err
	}
	limit, ok := models.ContactLimit(plan)
	if !ok {
		return Usage{}, ErrUnknownPlan
	}

	now := g.now()
	used, err := g.messages.CountDistinctUsersContactedSince(ctx, companyID, MonthStart(now))
	if err != nil {
		return Usage{}, err
	}

	return Usage{
		Plan:      plan,
		Limit:     limit,
		Used:      used,
		Unlimited: limit == 0,
		ResetsAt:  MonthStart(now).AddDate(0, 1, 0),
	}, nil
}

// MonthStart returns the first instant of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
