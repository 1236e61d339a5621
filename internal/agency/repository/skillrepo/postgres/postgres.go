package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/internal/agency/repository/skillrepo"
	"github.com/acmecorp/talent_agency/internal/pkg/pgtools"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type SkillsPostgresRepo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) SkillsPostgresRepo {
	return SkillsPostgresRepo{
		db: db,
	}
}

func (sr SkillsPostgresRepo) CreateSkill(ctx context.Context, s models.Skill) (err error) {
	tx, err := sr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create skill")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("skills").
		Columns("id", "name").
		Values(s.ID, s.Name).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	if err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) {
			switch target.Code { //nolint:gocritic
			case uniqueViolation:
				return skillrepo.ErrAlreadyExists
			}
		}

		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (sr SkillsPostgresRepo) FetchSkills(ctx context.Context) ([]models.Skill, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "name").
		From("skills").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := sr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	skills := make([]models.Skill, 0)

	for rows.Next() {
		var s models.Skill

		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		skills = append(skills, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return skills, nil
}
