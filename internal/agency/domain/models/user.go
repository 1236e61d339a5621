package models

// User is immutable after registration. PasswordHash travels with the
// record, including over the users listing endpoint, which mirrors the
// behavior this service replaces.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"password"`
}
