package services

import "errors"

var (
	// ErrForbidden пользователь не состоит в группе
	ErrForbidden = errors.New("not a member of this group")

	// ErrPersistence не удалось сохранить данные
	ErrPersistence = errors.New("persistence failure")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)
