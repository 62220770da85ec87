package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// postgresTagRepo serves one tag kind. Skills live in "skills" and carry a level
// column, interests live in "interests".
type postgresTagRepo struct {
	db      *pgxpool.Pool
	logger  logger.Logger
	kind    tag.Kind
	table   string
	columns []string
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func NewPostgresTagRepo(db *pgxpool.Pool, log logger.Logger, kind tag.Kind) tag.Repository {
	r := &postgresTagRepo{db: db, logger: log, kind: kind}
	switch kind {
	case tag.KindSkill:
		r.table = "skills"
		r.columns = []string{"id", "name", "category", "is_predefined", "level"}
	default:
		r.table = "interests"
		r.columns = []string{"id", "name", "category", "is_predefined"}
	}
	return r
}

func NewPostgresSkillRepo(db *pgxpool.Pool, log logger.Logger) tag.Repository {
	return NewPostgresTagRepo(db, log, tag.KindSkill)
}

func NewPostgresInterestRepo(db *pgxpool.Pool, log logger.Logger) tag.Repository {
	return NewPostgresTagRepo(db, log, tag.KindInterest)
}

func (r *postgresTagRepo) Kind() tag.Kind { return r.kind }

func (r *postgresTagRepo) hasLevel() bool { return r.kind == tag.KindSkill }

func (r *postgresTagRepo) scanTag(row pgx.Row) (*tag.Tag, error) {
	t := &tag.Tag{Kind: r.kind}
	dest := []any{&t.ID, &t.Name, &t.Category, &t.IsPredefined}
	if r.hasLevel() {
		dest = append(dest, &t.Level)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTagRepo) scanTags(rows pgx.Rows) ([]tag.Tag, error) {
	defer rows.Close()
	tags := make([]tag.Tag, 0)
	for rows.Next() {
		t, err := r.scanTag(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan "+r.kind.String()+" row", err)
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating "+r.kind.String()+" rows", err)
	}
	return tags, nil
}

func (r *postgresTagRepo) findOne(ctx context.Context, where sq.Sqlizer, ident string) (*tag.Tag, error) {
	query, args, err := psql.Select(r.columns...).From(r.table).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find "+r.kind.String()+" query", err)
	}
	t, err := r.scanTag(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(r.kind.Label(), ident)
		}
		return nil, apperror.NewInternal("failed to find "+r.kind.String(), err)
	}
	return t, nil
}

func (r *postgresTagRepo) query(ctx context.Context, builder sq.SelectBuilder) ([]tag.Tag, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list "+r.kind.String()+" query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query "+r.kind.String()+" rows", err)
	}
	return r.scanTags(rows)
}

func (r *postgresTagRepo) values(t *tag.Tag) []any {
	vals := []any{t.ID, t.Name, t.Category, t.IsPredefined}
	if r.hasLevel() {
		vals = append(vals, t.Level)
	}
	return vals
}

func (r *postgresTagRepo) Create(ctx context.Context, t *tag.Tag) error {
	query, args, err := psql.Insert(r.table).Columns(r.columns...).Values(r.values(t)...).ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build insert "+r.kind.String()+" query", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if _, dup := uniqueConstraint(err); dup {
			return apperror.NewConflict(r.kind.Label(), "name", t.Name)
		}
		return apperror.NewInternal("failed to save "+r.kind.String(), err)
	}
	return nil
}

func (r *postgresTagRepo) Update(ctx context.Context, t *tag.Tag) error {
	builder := psql.Update(r.table).
		Set("name", t.Name).
		Set("category", t.Category).
		Set("is_predefined", t.IsPredefined).
		Where(sq.Eq{"id": t.ID})
	if r.hasLevel() {
		builder = builder.Set("level", t.Level)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build update "+r.kind.String()+" query", err)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if _, dup := uniqueConstraint(err); dup {
			return apperror.NewConflict(r.kind.Label(), "name", t.Name)
		}
		return apperror.NewInternal("failed to update "+r.kind.String(), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.kind.Label(), t.ID.String())
	}
	return nil
}

func (r *postgresTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete(r.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build delete "+r.kind.String()+" query", err)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewInternal("failed to delete "+r.kind.String(), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.kind.Label(), id.String())
	}
	r.logger.Debug("Tag row deleted", zap.String("table", r.table), zap.String("id", id.String()))
	return nil
}

func (r *postgresTagRepo) FindByID(ctx context.Context, id uuid.UUID) (*tag.Tag, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, id.String())
}

func (r *postgresTagRepo) FindByName(ctx context.Context, name string) (*tag.Tag, error) {
	return r.findOne(ctx, sq.Eq{"name": name}, name)
}

func (r *postgresTagRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]tag.Tag, error) {
	if len(ids) == 0 {
		return []tag.Tag{}, nil
	}
	tags, err := r.query(ctx, psql.Select(r.columns...).From(r.table).Where("id = ANY(?)", ids))
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, tags, func(t tag.Tag) uuid.UUID { return t.ID }), nil
}

func (r *postgresTagRepo) List(ctx context.Context) ([]tag.Tag, error) {
	return r.query(ctx, psql.Select(r.columns...).From(r.table).OrderBy("category", "name"))
}

func (r *postgresTagRepo) SearchByName(ctx context.Context, partial string) ([]tag.Tag, error) {
	return r.query(ctx, psql.Select(r.columns...).From(r.table).
		Where(sq.ILike{"name": containsPattern(partial)}).
		OrderBy("name"))
}

func (r *postgresTagRepo) Count(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(r.table).ToSql()
	if err != nil {
		return 0, apperror.NewInternal("failed to build count query", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, apperror.NewInternal("failed to count "+r.kind.String()+" rows", err)
	}
	return n, nil
}
