package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrCompanyNotFound = errors.New("company not found")

// ActorRepository probes the users and companies tables. The probe is the
// compatibility fallback for identities whose token carries no kind claim; it
// also resolves company plans for quota checks.
type ActorRepository interface {
	UserExists(ctx context.Context, id int) (bool, error)
	CompanyExists(ctx context.Context, id int) (bool, error)
	CompanyPlan(ctx context.Context, id int) (models.Plan, error)
}

// ActorRepo is a sqlx implementation of ActorRepository.
type ActorRepo struct {
	db *sqlx.DB
}

// NewActorRepo constructs an ActorRepo.
func NewActorRepo(db *sqlx.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

// UserExists checks whether a user with the id exists.
func (r *ActorRepo) UserExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id)
	return exists, err
}

// CompanyExists checks whether a company with the id exists.
func (r *ActorRepo) CompanyExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM companies WHERE id=$1)`, id)
	return exists, err
}

// CompanyPlan returns the company's subscription plan key.
func (r *ActorRepo) CompanyPlan(ctx context.Context, id int) (models.Plan, error) {
	var plan models.Plan
	err := r.db.GetContext(ctx, &plan, `SELECT plan FROM companies WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCompanyNotFound
	}
	return plan, err
}

// Exists probes for the actor in the table matching its kind.
func Exists(ctx context.Context, r ActorRepository, actor models.Actor) (bool, error) {
	switch actor.Kind {
	case models.ActorKindUser:
		return r.UserExists(ctx, actor.ID)
	case models.ActorKindCompany:
		return r.CompanyExists(ctx, actor.ID)
	}
	return false, nil
}
