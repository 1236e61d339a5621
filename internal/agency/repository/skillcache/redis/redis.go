package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/internal/agency/repository/skillrepo"
	"github.com/acmecorp/talent_agency/internal/pkg/config"
	"github.com/acmecorp/talent_agency/internal/pkg/redistools"
	"github.com/redis/go-redis/v9"
)

const catalogKey = "skills:catalog"

type SkillCache struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(ctx context.Context, cfg config.RedisCache) (SkillCache, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return SkillCache{}, fmt.Errorf("connect error: %w", err)
	}

	return SkillCache{
		rdb:     rdb,
		expTime: cfg.ExpTime,
	}, nil
}

func (sc SkillCache) GetSkills(ctx context.Context) ([]models.Skill, error) {
	skillsJSON, err := sc.rdb.Get(ctx, catalogKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, skillrepo.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get error: %w", err)
	}

	var skills []models.Skill

	if err := json.Unmarshal([]byte(skillsJSON), &skills); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return skills, nil
}

func (sc SkillCache) SetSkills(ctx context.Context, skills []models.Skill) error {
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, err := sc.rdb.Set(ctx, catalogKey, skillsJSON, sc.expTime).Result(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (sc SkillCache) Invalidate(ctx context.Context) error {
	if _, err := sc.rdb.Del(ctx, catalogKey).Result(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}
