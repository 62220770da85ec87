package persistence

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type postgresObjectiveRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresObjectiveRepo(db *pgxpool.Pool, logger logger.Logger) objective.Repository {
	return &postgresObjectiveRepo{db: db, logger: logger}
}

const objectiveResource = "Learning objective"

var objectiveColumns = []string{
	"id", "user_id", "title", "description", "progress_percentage", "target_date", "created_at", "updated_at",
}

func scanObjective(row pgx.Row) (*objective.Objective, error) {
	o := &objective.Objective{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.Title, &o.Description,
		&o.ProgressPercentage, &o.TargetDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func scanObjectives(rows pgx.Rows) ([]objective.Objective, error) {
	defer rows.Close()
	items := make([]objective.Objective, 0)
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan objective row", err)
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating objective rows", err)
	}
	return items, nil
}

func (r *postgresObjectiveRepo) findOne(ctx context.Context, where sq.Sqlizer, ident string) (*objective.Objective, error) {
	query, args, err := psql.Select(objectiveColumns...).From("learning_objectives").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find objective query", err)
	}
	o, err := scanObjective(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(objectiveResource, ident)
		}
		return nil, apperror.NewInternal("failed to find objective", err)
	}
	return o, nil
}

func (r *postgresObjectiveRepo) list(ctx context.Context, builder sq.SelectBuilder) ([]objective.Objective, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list objectives query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query objectives", err)
	}
	return scanObjectives(rows)
}

func (r *postgresObjectiveRepo) Create(ctx context.Context, o *objective.Objective) error {
	query := `
		INSERT INTO learning_objectives (id, user_id, title, description, progress_percentage, target_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.UserID, o.Title, o.Description, o.ProgressPercentage, o.TargetDate, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if _, dup := uniqueConstraint(err); dup {
			return apperror.NewConflict(objectiveResource, "title", o.Title)
		}
		return apperror.NewInternal("failed to save objective", err)
	}
	return nil
}

func (r *postgresObjectiveRepo) Update(ctx context.Context, o *objective.Objective) error {
	o.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE learning_objectives SET
			title = $2, description = $3, progress_percentage = $4, target_date = $5, updated_at = $6
		WHERE id = $1 AND user_id = $7
	`
	cmdTag, err := r.db.Exec(ctx, query,
		o.ID, o.Title, o.Description, o.ProgressPercentage, o.TargetDate, o.UpdatedAt, o.UserID,
	)
	if err != nil {
		if _, dup := uniqueConstraint(err); dup {
			return apperror.NewConflict(objectiveResource, "title", o.Title)
		}
		return apperror.NewInternal("failed to update objective", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(objectiveResource, o.ID.String())
	}
	return nil
}

func (r *postgresObjectiveRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*objective.Objective, error) {
	query := `
		UPDATE learning_objectives SET progress_percentage = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, title, description, progress_percentage, target_date, created_at, updated_at
	`
	o, err := scanObjective(r.db.QueryRow(ctx, query, id, progress))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(objectiveResource, id.String())
		}
		return nil, apperror.NewInternal("failed to update objective progress", err)
	}
	return o, nil
}

func (r *postgresObjectiveRepo) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM learning_objectives WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperror.NewInternal("failed to delete objective", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(objectiveResource, id.String())
	}
	return nil
}

func (r *postgresObjectiveRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM learning_objectives WHERE user_id = $1`, userID)
	if err != nil {
		return 0, apperror.NewInternal("failed to delete user objectives", err)
	}
	r.logger.Debug("Deleted objectives of user", zap.String("user_id", userID.String()), zap.Int64("count", cmdTag.RowsAffected()))
	return cmdTag.RowsAffected(), nil
}

func (r *postgresObjectiveRepo) FindByID(ctx context.Context, id uuid.UUID) (*objective.Objective, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, id.String())
}

func (r *postgresObjectiveRepo) FindByTitleAndUser(ctx context.Context, title string, userID uuid.UUID) (*objective.Objective, error) {
	return r.findOne(ctx, sq.Eq{"title": title, "user_id": userID}, title)
}

func (r *postgresObjectiveRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]objective.Objective, error) {
	if len(ids) == 0 {
		return []objective.Objective{}, nil
	}
	items, err := r.list(ctx, psql.Select(objectiveColumns...).From("learning_objectives").Where("id = ANY(?)", ids))
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, items, func(o objective.Objective) uuid.UUID { return o.ID }), nil
}

func (r *postgresObjectiveRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]objective.Objective, error) {
	return r.list(ctx, psql.Select(objectiveColumns...).
		From("learning_objectives").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at"))
}

func (r *postgresObjectiveRepo) SearchByTitle(ctx context.Context, partial string) ([]objective.Objective, error) {
	return r.list(ctx, psql.Select(objectiveColumns...).
		From("learning_objectives").
		Where(sq.ILike{"title": containsPattern(partial)}).
		OrderBy("created_at DESC"))
}
