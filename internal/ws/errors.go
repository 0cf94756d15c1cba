package ws

import (
	"errors"
	"fmt"

	"fxconvert/internal/domain"
)

// periodError carries the period of a failed rate lookup so the reply can
// name it.
type periodError struct {
	year  int
	month int
	err   error
}

func (e *periodError) Error() string { return e.err.Error() }
func (e *periodError) Unwrap() error { return e.err }

func withPeriod(err error, year, month int) error {
	if err == nil {
		return nil
	}
	return &periodError{year: year, month: month, err: err}
}

// errorMessage maps an error to the text sent to the client. internal is
// true for failures the client cannot fix, which get logged.
func errorMessage(err error) (msg string, internal bool) {
	switch {
	case errors.Is(err, domain.ErrMalformedRequest):
		return "Invalid JSON", false
	case errors.Is(err, domain.ErrValidation):
		return err.Error(), false
	case errors.Is(err, domain.ErrCurrencyNotFound):
		return "Currency not found", false
	case errors.Is(err, domain.ErrRateNotFound):
		var pe *periodError
		if errors.As(err, &pe) {
			return fmt.Sprintf("No rate data for %d-%d", pe.year, pe.month), false
		}
		return "No rate data", false
	case errors.Is(err, domain.ErrInvalidAmount):
		return "Invalid amount", false
	case errors.Is(err, domain.ErrInvalidRate):
		return "Invalid rate data", false
	case errors.Is(err, domain.ErrDivisionByZero):
		return "Conversion error: division by zero", false
	case errors.Is(err, domain.ErrRepository):
		return "Storage unavailable, please retry later", true
	default:
		return "Internal error", true
	}
}

func errorOutbound(msg string) Outbound {
	return Outbound{Type: TypeError, Message: msg}
}
