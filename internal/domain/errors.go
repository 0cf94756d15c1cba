package domain

import "errors"

var (
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrRateNotFound     = errors.New("rate not found")
	ErrInvalidRate      = errors.New("invalid rate")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrValidation       = errors.New("validation error")
	ErrMalformedRequest = errors.New("malformed request")
	ErrRepository       = errors.New("repository error")
)
