package server

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateUserSkillRequest struct {
	SkillID string `json:"skill_id"` //nolint:tagliatelle
}
