package models

type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserSkill links one user to one skill. At most one row exists per
// (user, skill) pair.
type UserSkill struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`  //nolint:tagliatelle
	SkillID string `json:"skill_id"` //nolint:tagliatelle
}
