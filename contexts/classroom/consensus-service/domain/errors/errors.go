package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("caller role does not permit this operation")
	ErrAlreadyRegistered  = errors.New("identity is already registered")
	ErrInvalidSecret      = errors.New("wrong ta secret")
	ErrSlotsFull          = errors.New("ta slots are full")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCategory    = errors.New("invalid presentation category")
	ErrInvalidState       = errors.New("presentation is not in the required state")
	ErrAlreadyVoted       = errors.New("student has already voted on this presentation")
	ErrInvalidInput       = errors.New("invalid input")
	ErrProfessorImmutable = errors.New("professor is already fixed to a different identity")
	ErrConflict           = errors.New("concurrent write conflict")
)

var (
	ErrPresentationNotFound = fmt.Errorf("presentation %w", ErrNotFound)
	ErrStudentNotFound      = fmt.Errorf("student %w", ErrNotFound)
	ErrNotAStudent          = fmt.Errorf("target identity is not a student: %w", ErrUnauthorized)
)
