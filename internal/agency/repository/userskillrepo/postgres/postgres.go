package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/internal/agency/repository/userskillrepo"
	"github.com/acmecorp/talent_agency/internal/pkg/pgtools"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type UserSkillsPostgresRepo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) UserSkillsPostgresRepo {
	return UserSkillsPostgresRepo{
		db: db,
	}
}

func (usr UserSkillsPostgresRepo) CreateUserSkill(ctx context.Context, us models.UserSkill) (err error) {
	tx, err := usr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create user skill")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("user_skills").
		Columns("id", "user_id", "skill_id").
		Values(us.ID, us.UserID, us.SkillID).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) {
			switch target.Code {
			case uniqueViolation:
				return userskillrepo.ErrAlreadyExists
			case foreignKeyViolation:
				return userskillrepo.ErrReferenceNotFound
			}
		}

		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (usr UserSkillsPostgresRepo) FetchUserSkills(ctx context.Context, userID string) ([]models.UserSkill, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "user_id", "skill_id").
		From("user_skills").
		Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := usr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	userSkills := make([]models.UserSkill, 0)

	for rows.Next() {
		var us models.UserSkill

		if err := rows.Scan(&us.ID, &us.UserID, &us.SkillID); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		userSkills = append(userSkills, us)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return userSkills, nil
}

// DeleteUserSkill removes the row matching both id and owner. A row that
// does not match, because it belongs to someone else or never existed,
// is left alone and no error is reported.
func (usr UserSkillsPostgresRepo) DeleteUserSkill(ctx context.Context, id, userID string) (err error) {
	tx, err := usr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete user skill")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("user_skills").
		Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}
