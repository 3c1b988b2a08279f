package domain

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrPrecondition      = errors.New("precondition failed")
	ErrDuplicateRequest  = errors.New("reservation request already in progress")
	ErrCallPlacement     = errors.New("call placement failed")
	ErrAlreadyProcessed  = errors.New("reservation already processed")
	ErrInvalidTransition = errors.New("invalid status transition")
)
