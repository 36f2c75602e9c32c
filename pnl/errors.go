package pnl

import "errors"

var (
	ErrInvalidEntry     = errors.New("entry price must be greater than zero")
	ErrInvalidExit      = errors.New("exit price must be greater than zero")
	ErrMissingDirection = errors.New("direction must be long or short")
	ErrInvalidAmount    = errors.New("not a number")
	ErrNoMode           = errors.New("enter lots or a position size to compute P&L")
)

// InputError names the plan field that blocked a P&L computation.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *InputError) Unwrap() error {
	return e.Err
}
