package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/internal/agency/services/authservice"
	"github.com/acmecorp/talent_agency/internal/pkg/config"
	"github.com/acmecorp/talent_agency/pkg/logger"
	"github.com/go-chi/chi/v5"
)

var errMustLogIn = errors.New("you must be logged in to do that")

type Server struct {
	serv         *http.Server
	authService  AuthService
	skillService SkillService
}

type AuthService interface {
	Register(context.Context, authservice.CreateUserRequest) (string, error)
	Authenticate(ctx context.Context, name, password string) (string, error)
	FindUserByToken(ctx context.Context, token string) (models.User, error)
	FetchUsers(context.Context) ([]models.User, error)
}

type SkillService interface {
	FetchSkills(context.Context) ([]models.Skill, error)
	CreateUserSkill(ctx context.Context, userID, skillID string) (models.UserSkill, error)
	FetchUserSkills(ctx context.Context, userID string) ([]models.UserSkill, error)
	DeleteUserSkill(ctx context.Context, id, userID string) error
}

func New(cfg config.Server, authService AuthService, skillService SkillService, lg logger.Logger) *Server {
	var s Server

	s.authService = authService
	s.skillService = skillService

	r := chi.NewRouter()
	r.Use(loggingMiddleware(lg))
	r.Use(authMiddleware(authService))

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", s.GetUsers)
		r.Get("/skills", s.GetSkills)
		r.Get("/users/userSkills", s.GetUserSkills)
		r.Post("/users/userSkills", s.PostUserSkill)
		r.Delete("/users/userSkills/{id}", s.DeleteUserSkill)
		r.Post("/auth/register", s.PostRegister)
		r.Post("/auth/login", s.PostLogin)
		r.Get("/auth/me", s.GetMe)
	})

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &s
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

// Список всех пользователей, включая хэши паролей
// (GET /api/users).
func (s *Server) GetUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	users, err := s.authService.FetchUsers(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("fetch users error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(users); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Каталог навыков
// (GET /api/skills).
func (s *Server) GetSkills(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	skills, err := s.skillService.FetchSkills(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("fetch skills error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(skills); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Навыки текущего пользователя
// (GET /api/users/userSkills).
func (s *Server) GetUserSkills(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, errMustLogIn, http.StatusUnauthorized)

		return
	}

	userSkills, err := s.skillService.FetchUserSkills(r.Context(), u.ID)
	if err != nil {
		handleError(w, fmt.Errorf("fetch user skills error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(userSkills); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Назначение навыка текущему пользователю
// (POST /api/users/userSkills).
func (s *Server) PostUserSkill(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, errMustLogIn, http.StatusUnauthorized)

		return
	}

	var b CreateUserSkillRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	us, err := s.skillService.CreateUserSkill(r.Context(), u.ID, b.SkillID)
	if err != nil {
		handleError(w, fmt.Errorf("create user skill error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(us); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Удаление назначенного навыка. Чужая или несуществующая запись
// не трогается, но ответ всё равно 204
// (DELETE /api/users/userSkills/{id}).
func (s *Server) DeleteUserSkill(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, errMustLogIn, http.StatusUnauthorized)

		return
	}

	id := chi.URLParam(r, "id")

	if err := s.skillService.DeleteUserSkill(r.Context(), id, u.ID); err != nil {
		handleError(w, fmt.Errorf("delete user skill error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Регистрация нового пользователя
// (POST /api/auth/register).
func (s *Server) PostRegister(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var b authservice.CreateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	token, err := s.authService.Register(r.Context(), b)
	if err != nil {
		handleError(w, fmt.Errorf("register error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(TokenResponse{Token: token}); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Аутентификация по имени и паролю
// (POST /api/auth/login).
func (s *Server) PostLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var b authservice.CreateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	token, err := s.authService.Authenticate(r.Context(), b.Name, b.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			handleError(w, err, http.StatusUnauthorized)

			return
		}

		handleError(w, fmt.Errorf("login error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(TokenResponse{Token: token}); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Запись текущего пользователя
// (GET /api/auth/me).
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, errMustLogIn, http.StatusUnauthorized)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(u); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func handleError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}
