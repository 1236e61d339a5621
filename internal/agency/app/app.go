package app

import (
	"context"
	"fmt"
	"time"

	"github.com/acmecorp/talent_agency/internal/agency/api/server"
	"github.com/acmecorp/talent_agency/internal/agency/repository/skillcache/redis"
	sr "github.com/acmecorp/talent_agency/internal/agency/repository/skillrepo/postgres"
	ur "github.com/acmecorp/talent_agency/internal/agency/repository/userrepo/postgres"
	usr "github.com/acmecorp/talent_agency/internal/agency/repository/userskillrepo/postgres"
	"github.com/acmecorp/talent_agency/internal/agency/services/authservice"
	"github.com/acmecorp/talent_agency/internal/agency/services/skillservice"
	"github.com/acmecorp/talent_agency/internal/pkg/config"
	"github.com/acmecorp/talent_agency/internal/pkg/pgtools"
	"github.com/acmecorp/talent_agency/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type AgencyApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

func New(ctx context.Context, cfg config.Config) (AgencyApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return AgencyApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	// Один пул на все репозитории.
	db, err := pgtools.Connect(ctx, cfg.PostgresDB.URL)
	if err != nil {
		return AgencyApp{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg.PostgresDB); err != nil {
		return AgencyApp{}, fmt.Errorf("apply migration error: %w", err)
	}

	sc, err := redis.New(ctx, cfg.RedisCache)
	if err != nil {
		return AgencyApp{}, fmt.Errorf("redis skill cache initializing error: %w", err)
	}

	skillService := skillservice.New(sr.New(db), usr.New(db), sc, lg)

	go skillService.BackgroundRefresh(ctx, cfg.RedisCache.ExpTime)

	authService := authservice.New(ur.New(db), cfg.Auth)

	s := server.New(cfg.Server, authService, skillService, lg)

	return AgencyApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (aa *AgencyApp) Run(ctx context.Context) {
	aa.lg.Infof("STARTED SERVER ON %s", aa.cfg.Server.Addr)

	go func() {
		if err := aa.s.Start(ctx); err != nil {
			aa.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := aa.Stop(ctxS); err != nil { //nolint:contextcheck
		aa.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (aa *AgencyApp) Stop(ctx context.Context) error {
	if err := aa.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	aa.lg.Info("Shutdowned successfully")

	return nil
}
