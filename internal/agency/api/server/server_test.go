package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/internal/agency/repository/skillrepo"
	"github.com/acmecorp/talent_agency/internal/agency/repository/userrepo"
	"github.com/acmecorp/talent_agency/internal/agency/repository/userskillrepo"
	"github.com/acmecorp/talent_agency/internal/agency/services/authservice"
	"github.com/acmecorp/talent_agency/internal/agency/services/skillservice"
	"github.com/acmecorp/talent_agency/internal/pkg/config"
	"github.com/acmecorp/talent_agency/internal/pkg/jwtauth"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type nopLogger struct{}

func (nopLogger) Info(_ ...interface{})             {}
func (nopLogger) Infof(_ string, _ ...interface{})  {}
func (nopLogger) Warnf(_ string, _ ...interface{})  {}
func (nopLogger) Error(_ ...interface{})            {}
func (nopLogger) Errorf(_ string, _ ...interface{}) {}

type memUserRepo struct {
	users map[string]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]models.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, u models.User) error {
	for _, e := range r.users {
		if e.Name == u.Name {
			return userrepo.ErrAlreadyExists
		}
	}

	r.users[u.ID] = u

	return nil
}

func (r *memUserRepo) GetUserByName(_ context.Context, name string) (models.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			return u, nil
		}
	}

	return models.User{}, userrepo.ErrNotFound
}

func (r *memUserRepo) GetUserByID(_ context.Context, id string) (models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}

func (r *memUserRepo) FetchUsers(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}

	return users, nil
}

type memSkillRepo struct {
	skills []models.Skill
}

func (r *memSkillRepo) CreateSkill(_ context.Context, s models.Skill) error {
	for _, e := range r.skills {
		if e.Name == s.Name {
			return skillrepo.ErrAlreadyExists
		}
	}

	r.skills = append(r.skills, s)

	return nil
}

func (r *memSkillRepo) FetchSkills(_ context.Context) ([]models.Skill, error) {
	return append([]models.Skill(nil), r.skills...), nil
}

type memUserSkillRepo struct {
	rows        map[string]models.UserSkill
	createCalls int
}

func newMemUserSkillRepo() *memUserSkillRepo {
	return &memUserSkillRepo{rows: make(map[string]models.UserSkill)}
}

func (r *memUserSkillRepo) CreateUserSkill(_ context.Context, us models.UserSkill) error {
	r.createCalls++

	for _, e := range r.rows {
		if e.UserID == us.UserID && e.SkillID == us.SkillID {
			return userskillrepo.ErrAlreadyExists
		}
	}

	r.rows[us.ID] = us

	return nil
}

func (r *memUserSkillRepo) FetchUserSkills(_ context.Context, userID string) ([]models.UserSkill, error) {
	userSkills := make([]models.UserSkill, 0)

	for _, us := range r.rows {
		if us.UserID == userID {
			userSkills = append(userSkills, us)
		}
	}

	return userSkills, nil
}

func (r *memUserSkillRepo) DeleteUserSkill(_ context.Context, id, userID string) error {
	if us, ok := r.rows[id]; ok && us.UserID == userID {
		delete(r.rows, id)
	}

	return nil
}

type nopCache struct{}

func (nopCache) GetSkills(_ context.Context) ([]models.Skill, error) {
	return nil, skillrepo.ErrNotFound
}

func (nopCache) SetSkills(_ context.Context, _ []models.Skill) error { return nil }

func (nopCache) Invalidate(_ context.Context) error { return nil }

type env struct {
	handler       http.Handler
	userRepo      *memUserRepo
	skillRepo     *memSkillRepo
	userSkillRepo *memUserSkillRepo
}

func newEnv() env {
	userRepo := newMemUserRepo()
	skillRepo := &memSkillRepo{}
	userSkillRepo := newMemUserSkillRepo()

	authService := authservice.New(userRepo, config.Auth{Secret: testSecret})
	skillService := skillservice.New(skillRepo, userSkillRepo, nopCache{}, nopLogger{})

	cfg := config.Server{
		Addr:         ":0",
		ReadTimeout:  time.Second,
		IdleTimeout:  time.Second,
		WriteTimeout: time.Second,
	}

	s := New(cfg, authService, skillService, nopLogger{})

	return env{
		handler:       s.serv.Handler,
		userRepo:      userRepo,
		skillRepo:     skillRepo,
		userSkillRepo: userSkillRepo,
	}
}

func (e env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	return w
}

func (e env) register(t *testing.T, name, password string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/register", "",
		authservice.CreateUserRequest{Name: name, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func TestRegisterAndUserSkillFlow(t *testing.T) {
	e := newEnv()

	skill := models.Skill{ID: "skill-1", Name: "hacking"}
	e.skillRepo.skills = append(e.skillRepo.skills, skill)

	token := e.register(t, "moe", "m_pw")

	w := e.do(t, http.MethodPost, "/api/users/userSkills", token, CreateUserSkillRequest{SkillID: skill.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created models.UserSkill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, skill.ID, created.SkillID)

	w = e.do(t, http.MethodGet, "/api/users/userSkills", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.UserSkill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, skill.ID, listed[0].SkillID)

	w = e.do(t, http.MethodDelete, "/api/users/userSkills/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/api/users/userSkills", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	listed = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Empty(t, listed)
}

func TestProtectedEndpointsRequireLogin(t *testing.T) {
	e := newEnv()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users/userSkills"},
		{http.MethodPost, "/api/users/userSkills"},
		{http.MethodDelete, "/api/users/userSkills/some-id"},
		{http.MethodGet, "/api/auth/me"},
	} {
		w := e.do(t, tc.method, tc.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)

		var resp Error
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp.Err, "must be logged in")
	}
}

func TestInvalidTokenRejectedBeforeHandler(t *testing.T) {
	e := newEnv()

	// даже анонимный маршрут отклоняет испорченный токен
	w := e.do(t, http.MethodGet, "/api/skills", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/users/userSkills", "not-a-token", CreateUserSkillRequest{SkillID: "skill-1"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, e.userSkillRepo.createCalls)
}

func TestTokenForDeletedUserRejected(t *testing.T) {
	e := newEnv()

	token, err := jwtauth.Sign("ghost-id", testSecret)
	require.NoError(t, err)

	w := e.do(t, http.MethodGet, "/api/users/userSkills", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteForeignUserSkillIsNoop(t *testing.T) {
	e := newEnv()

	skill := models.Skill{ID: "skill-1", Name: "hacking"}
	e.skillRepo.skills = append(e.skillRepo.skills, skill)

	ownerToken := e.register(t, "owner", "o_pw")
	otherToken := e.register(t, "other", "x_pw")

	w := e.do(t, http.MethodPost, "/api/users/userSkills", ownerToken, CreateUserSkillRequest{SkillID: skill.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var created models.UserSkill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// чужое удаление выглядит успешным, но строка остаётся
	w = e.do(t, http.MethodDelete, "/api/users/userSkills/"+created.ID, otherToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/api/users/userSkills", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.UserSkill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestDuplicateUserSkillFails(t *testing.T) {
	e := newEnv()

	skill := models.Skill{ID: "skill-1", Name: "hacking"}
	e.skillRepo.skills = append(e.skillRepo.skills, skill)

	token := e.register(t, "moe", "m_pw")

	w := e.do(t, http.MethodPost, "/api/users/userSkills", token, CreateUserSkillRequest{SkillID: skill.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/users/userSkills", token, CreateUserSkillRequest{SkillID: skill.ID})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRegisterDuplicateName(t *testing.T) {
	e := newEnv()

	e.register(t, "moe", "m_pw")

	w := e.do(t, http.MethodPost, "/api/auth/register", "",
		authservice.CreateUserRequest{Name: "moe", Password: "other_pw"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogin(t *testing.T) {
	e := newEnv()

	e.register(t, "moe", "m_pw")

	w := e.do(t, http.MethodPost, "/api/auth/login", "",
		authservice.CreateUserRequest{Name: "moe", Password: "m_pw"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	_, err := jwtauth.Verify(resp.Token, testSecret)
	require.NoError(t, err)

	w = e.do(t, http.MethodPost, "/api/auth/login", "",
		authservice.CreateUserRequest{Name: "moe", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFetchUsersExposesHash(t *testing.T) {
	e := newEnv()

	e.register(t, "moe", "m_pw")

	w := e.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	require.NotEmpty(t, users[0]["password"])
	require.NotEqual(t, "m_pw", users[0]["password"])
}

func TestFetchSkills(t *testing.T) {
	e := newEnv()

	e.skillRepo.skills = []models.Skill{
		{ID: "s1", Name: "writing"},
		{ID: "s2", Name: "reading"},
	}

	w := e.do(t, http.MethodGet, "/api/skills", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var skills []models.Skill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &skills))
	require.Len(t, skills, 2)
}

func TestMe(t *testing.T) {
	e := newEnv()

	token := e.register(t, "moe", "m_pw")

	w := e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var u models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	require.Equal(t, "moe", u.Name)
}
