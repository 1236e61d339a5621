package userskillrepo

import "errors"

var (
	ErrAlreadyExists     = errors.New("user skill already exists")
	ErrReferenceNotFound = errors.New("referenced user or skill does not exist")
)
