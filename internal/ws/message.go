package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"fxconvert/internal/domain"
)

// Inbound and outbound message types.
const (
	TypeConvert           = "convert"
	TypeGetCurrencies     = "get_currencies"
	TypeGetCountries      = "get_countries"
	TypeRatesAboveAverage = "get_rates_above_average"
	TypeGetAverageRate    = "get_average_rate"
	TypeUpdateRate        = "update_rate"
	TypeGetAuditLogs      = "get_audit_logs"
	TypeEcho              = "echo"

	TypeConnectionEstablished = "connection_established"
	TypeConversionResult      = "conversion_result"
	TypeCurrenciesList        = "currencies_list"
	TypeCountriesList         = "countries_list"
	TypeRatesAboveAverageList = "rates_above_average"
	TypeAverageRateResult     = "average_rate_result"
	TypeRateUpdateResult      = "rate_update_result"
	TypeAuditLogs             = "audit_logs"
	TypeError                 = "error"
)

// Outbound is the single reply produced for every inbound message.
type Outbound struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type envelope struct {
	Type *string `json:"type"`
}

// parseEnvelope extracts the message type. An absent type means echo; the
// message itself must be a JSON object.
func parseEnvelope(raw []byte) (string, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", fmt.Errorf("%w: message is null", domain.ErrMalformedRequest)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "type" {
			return "", fmt.Errorf("%w: type must be a string", domain.ErrValidation)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedRequest, err)
	}
	if env.Type == nil {
		return TypeEcho, nil
	}
	return *env.Type, nil
}

// decodePayload unmarshals the message into req, reporting field type
// mismatches as validation errors.
func decodePayload(raw []byte, req any) error {
	if err := json.Unmarshal(raw, req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: %s must be %s", domain.ErrValidation, typeErr.Field, kindName(typeErr.Type.Kind()))
		}
		if errors.Is(err, domain.ErrInvalidAmount) || errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrMalformedRequest, err)
	}
	return nil
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	default:
		return "a " + k.String()
	}
}

// Number accepts a JSON number or a string holding one, e.g. 100 or "100.5".
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	text := string(b)
	if len(b) > 0 && b[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidAmount, text)
		}
		text = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidAmount, text)
	}
	*n = Number(v)
	return nil
}
