package skillservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/internal/agency/repository/skillrepo"
	"github.com/acmecorp/talent_agency/pkg/logger"
	"github.com/google/uuid"
)

type SkillService struct {
	skillRepo     SkillRepository
	userSkillRepo UserSkillRepository
	skillCache    Cache
	lg            logger.Logger
}

type SkillRepository interface {
	CreateSkill(context.Context, models.Skill) error
	FetchSkills(context.Context) ([]models.Skill, error)
}

type UserSkillRepository interface {
	CreateUserSkill(context.Context, models.UserSkill) error
	FetchUserSkills(context.Context, string) ([]models.UserSkill, error)
	DeleteUserSkill(ctx context.Context, id, userID string) error
}

type Cache interface {
	GetSkills(context.Context) ([]models.Skill, error)
	SetSkills(context.Context, []models.Skill) error
	Invalidate(context.Context) error
}

func New(skillRepo SkillRepository, userSkillRepo UserSkillRepository, skillCache Cache, lg logger.Logger) *SkillService {
	return &SkillService{
		skillRepo:     skillRepo,
		userSkillRepo: userSkillRepo,
		skillCache:    skillCache,
		lg:            lg,
	}
}

func (ss *SkillService) CreateSkill(ctx context.Context, name string) (models.Skill, error) {
	s := models.Skill{
		ID:   uuid.NewString(),
		Name: name,
	}

	if err := ss.skillRepo.CreateSkill(ctx, s); err != nil {
		return models.Skill{}, fmt.Errorf("create skill error: %w", err)
	}

	if err := ss.skillCache.Invalidate(ctx); err != nil {
		ss.lg.Errorf("invalidate skill cache error: %s", err.Error())
	}

	return s, nil
}

// FetchSkills reads the catalog through the cache. A cache failure only
// degrades to a database round-trip.
func (ss *SkillService) FetchSkills(ctx context.Context) ([]models.Skill, error) {
	skills, err := ss.skillCache.GetSkills(ctx)
	if err == nil {
		return skills, nil
	}

	if !errors.Is(err, skillrepo.ErrNotFound) {
		ss.lg.Warnf("get skills cache error: %s", err.Error())
	}

	skills, err = ss.skillRepo.FetchSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch skills error: %w", err)
	}

	if err := ss.skillCache.SetSkills(ctx, skills); err != nil {
		ss.lg.Errorf("set skills cache error: %s", err.Error())
	}

	return skills, nil
}

func (ss *SkillService) CreateUserSkill(ctx context.Context, userID, skillID string) (models.UserSkill, error) {
	us := models.UserSkill{
		ID:      uuid.NewString(),
		UserID:  userID,
		SkillID: skillID,
	}

	if err := ss.userSkillRepo.CreateUserSkill(ctx, us); err != nil {
		return models.UserSkill{}, fmt.Errorf("create user skill error: %w", err)
	}

	return us, nil
}

func (ss *SkillService) FetchUserSkills(ctx context.Context, userID string) ([]models.UserSkill, error) {
	userSkills, err := ss.userSkillRepo.FetchUserSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user skills error: %w", err)
	}

	return userSkills, nil
}

// DeleteUserSkill succeeds whether or not a row matched: ownership is
// enforced by the owner filter alone, not by an error.
func (ss *SkillService) DeleteUserSkill(ctx context.Context, id, userID string) error {
	if err := ss.userSkillRepo.DeleteUserSkill(ctx, id, userID); err != nil {
		return fmt.Errorf("delete user skill error: %w", err)
	}

	return nil
}

func (ss *SkillService) BackgroundRefresh(ctx context.Context, ttl time.Duration) {
	t := time.NewTicker(ttl)
	defer t.Stop()

	if err := ss.refresh(ctx); err != nil {
		ss.lg.Errorf("refresh error: %s", err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := ss.refresh(ctx); err != nil {
				ss.lg.Errorf("refresh error: %s", err.Error())
			}
		}
	}
}

func (ss *SkillService) refresh(ctx context.Context) error {
	skills, err := ss.skillRepo.FetchSkills(ctx)
	if err != nil {
		return fmt.Errorf("fetch skills error: %w", err)
	}

	if err := ss.skillCache.SetSkills(ctx, skills); err != nil {
		return fmt.Errorf("set skills cache error: %w", err)
	}

	return nil
}
