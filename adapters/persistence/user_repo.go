package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type postgresUserRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresUserRepo(db *pgxpool.Pool, logger logger.Logger) user.Repository {
	return &postgresUserRepo{db: db, logger: logger}
}

var userColumns = []string{
	"id", "keycloak_id", "username", "email", "bio", "profile_picture_url",
	"skill_ids", "interest_ids", "objective_ids", "partnership_ids",
	"completion_status", "created_at", "updated_at",
}

func scanUser(row pgx.Row) (*user.UserProfile, error) {
	p := &user.UserProfile{}
	var status string
	err := row.Scan(
		&p.ID, &p.KeycloakID, &p.Username, &p.Email, &p.Bio, &p.ProfilePictureURL,
		&p.SkillIDs, &p.InterestIDs, &p.ObjectiveIDs, &p.PartnershipIDs,
		&status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CompletionStatus = user.CompletionStatus(status)
	return p, nil
}

func scanUsers(rows pgx.Rows) ([]*user.UserProfile, error) {
	defer rows.Close()
	users := make([]*user.UserProfile, 0)
	for rows.Next() {
		p, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan user row", err)
		}
		users = append(users, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating user rows", err)
	}
	return users, nil
}

// conflictFor maps a unique-constraint name to the field it guards.
func conflictFor(constraint string, p *user.UserProfile) error {
	switch constraint {
	case "uq_user_profiles_email":
		return apperror.NewConflict("User", "email", p.Email)
	case "uq_user_profiles_keycloak_id":
		kc := ""
		if p.KeycloakID != nil {
			kc = *p.KeycloakID
		}
		return apperror.NewConflict("User", "keycloakId", kc)
	default:
		return apperror.NewConflict("User", "username", p.Username)
	}
}

func (r *postgresUserRepo) Create(ctx context.Context, p *user.UserProfile) error {
	query, args, err := psql.Insert("user_profiles").Columns(userColumns...).Values(
		p.ID, p.KeycloakID, p.Username, p.Email, p.Bio, p.ProfilePictureURL,
		nonNilIDs(p.SkillIDs), nonNilIDs(p.InterestIDs), nonNilIDs(p.ObjectiveIDs), nonNilStrings(p.PartnershipIDs),
		string(p.CompletionStatus), p.CreatedAt, p.UpdatedAt,
	).ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build insert user query", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if constraint, dup := uniqueConstraint(err); dup {
			return conflictFor(constraint, p)
		}
		return apperror.NewInternal("failed to save user", err)
	}
	return nil
}

func (r *postgresUserRepo) Update(ctx context.Context, p *user.UserProfile) error {
	query, args, err := psql.Update("user_profiles").
		Set("keycloak_id", p.KeycloakID).
		Set("username", p.Username).
		Set("email", p.Email).
		Set("bio", p.Bio).
		Set("profile_picture_url", p.ProfilePictureURL).
		Set("skill_ids", nonNilIDs(p.SkillIDs)).
		Set("interest_ids", nonNilIDs(p.InterestIDs)).
		Set("objective_ids", nonNilIDs(p.ObjectiveIDs)).
		Set("partnership_ids", nonNilStrings(p.PartnershipIDs)).
		Set("completion_status", string(p.CompletionStatus)).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update user query", err)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if constraint, dup := uniqueConstraint(err); dup {
			return conflictFor(constraint, p)
		}
		return apperror.NewInternal("failed to update user", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("User", p.ID.String())
	}
	return nil
}

func (r *postgresUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete user", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("User", id.String())
	}
	r.logger.Debug("User row deleted", zap.String("user_id", id.String()))
	return nil
}

func (r *postgresUserRepo) findOne(ctx context.Context, where sq.Sqlizer, ident string) (*user.UserProfile, error) {
	query, args, err := psql.Select(userColumns...).From("user_profiles").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find user query", err)
	}
	p, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("User", ident)
		}
		return nil, apperror.NewInternal("failed to find user", err)
	}
	return p, nil
}

func (r *postgresUserRepo) list(ctx context.Context, builder sq.SelectBuilder) ([]*user.UserProfile, error) {
	query, args, err := builder.OrderBy("created_at").ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list users query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query users", err)
	}
	return scanUsers(rows)
}

func (r *postgresUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.UserProfile, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, id.String())
}

func (r *postgresUserRepo) FindByUsername(ctx context.Context, username string) (*user.UserProfile, error) {
	return r.findOne(ctx, sq.Eq{"username": username}, username)
}

func (r *postgresUserRepo) FindByEmail(ctx context.Context, email string) (*user.UserProfile, error) {
	return r.findOne(ctx, sq.Eq{"email": email}, email)
}

func (r *postgresUserRepo) FindByKeycloakID(ctx context.Context, keycloakID string) (*user.UserProfile, error) {
	return r.findOne(ctx, sq.Eq{"keycloak_id": keycloakID}, keycloakID)
}

func (r *postgresUserRepo) List(ctx context.Context) ([]*user.UserProfile, error) {
	return r.list(ctx, psql.Select(userColumns...).From("user_profiles"))
}

func (r *postgresUserRepo) ListBySkill(ctx context.Context, skillID uuid.UUID) ([]*user.UserProfile, error) {
	return r.list(ctx, psql.Select(userColumns...).From("user_profiles").Where("? = ANY(skill_ids)", skillID))
}

func (r *postgresUserRepo) ListByInterest(ctx context.Context, interestID uuid.UUID) ([]*user.UserProfile, error) {
	return r.list(ctx, psql.Select(userColumns...).From("user_profiles").Where("? = ANY(interest_ids)", interestID))
}
