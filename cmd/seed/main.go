package main

import (
	"context"
	"flag"
	"log"

	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	sr "github.com/acmecorp/talent_agency/internal/agency/repository/skillrepo/postgres"
	ur "github.com/acmecorp/talent_agency/internal/agency/repository/userrepo/postgres"
	usr "github.com/acmecorp/talent_agency/internal/agency/repository/userskillrepo/postgres"
	"github.com/acmecorp/talent_agency/internal/agency/services/authservice"
	"github.com/acmecorp/talent_agency/internal/pkg/config"
	"github.com/acmecorp/talent_agency/internal/pkg/pgtools"
	"github.com/acmecorp/talent_agency/pkg/logger"
	"github.com/google/uuid"
)

// Наполняет базу демонстрационными данными: три пользователя,
// три навыка, три назначения, после чего одно назначение удаляется
// владельцем.
func main() {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	db, err := pgtools.Connect(ctx, cfg.PostgresDB.URL)
	if err != nil {
		lg.Errorf("connect to db error: %s", err.Error())

		return
	}
	defer db.Close()

	if err := pgtools.ApplyMigration(cfg.PostgresDB); err != nil {
		lg.Errorf("apply migration error: %s", err.Error())

		return
	}

	userRepo := ur.New(db)
	skillRepo := sr.New(db)
	userSkillRepo := usr.New(db)
	authService := authservice.New(userRepo, cfg.Auth)

	users := make([]models.User, 0, 3)

	for _, req := range []authservice.CreateUserRequest{
		{Name: "user", Password: "abc123"},
		{Name: "student", Password: "somePassword"},
		{Name: "admin", Password: "admin"},
	} {
		u, err := authService.CreateUser(ctx, req)
		if err != nil {
			lg.Errorf("create user error: %s", err.Error())

			return
		}

		users = append(users, u)
	}

	lg.Infof("users created: %d", len(users))

	skills := make([]models.Skill, 0, 3)

	for _, name := range []string{"writing", "reading", "hacking"} {
		s := models.Skill{ID: uuid.NewString(), Name: name}

		if err := skillRepo.CreateSkill(ctx, s); err != nil {
			lg.Errorf("create skill error: %s", err.Error())

			return
		}

		skills = append(skills, s)
	}

	lg.Infof("skills created: %d", len(skills))

	pairs := []models.UserSkill{
		{ID: uuid.NewString(), UserID: users[1].ID, SkillID: skills[2].ID},
		{ID: uuid.NewString(), UserID: users[0].ID, SkillID: skills[0].ID},
		{ID: uuid.NewString(), UserID: users[2].ID, SkillID: skills[1].ID},
	}

	for _, us := range pairs {
		if err := userSkillRepo.CreateUserSkill(ctx, us); err != nil {
			lg.Errorf("create user skill error: %s", err.Error())

			return
		}
	}

	studentSkills, err := userSkillRepo.FetchUserSkills(ctx, users[1].ID)
	if err != nil {
		lg.Errorf("fetch user skills error: %s", err.Error())

		return
	}

	lg.Infof("user skills created, student has %d", len(studentSkills))

	if err := userSkillRepo.DeleteUserSkill(ctx, pairs[0].ID, users[1].ID); err != nil {
		lg.Errorf("delete user skill error: %s", err.Error())

		return
	}

	studentSkills, err = userSkillRepo.FetchUserSkills(ctx, users[1].ID)
	if err != nil {
		lg.Errorf("fetch user skills error: %s", err.Error())

		return
	}

	lg.Infof("after deleting user skill student has %d", len(studentSkills))
}
