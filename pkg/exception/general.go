package exception

import "github.com/yanun0323/errors"

var (
	ErrNotFound           = errors.New("entity not found")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
)
