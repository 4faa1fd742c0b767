package apiutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/models"
)

func ParseNonNegativeInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, FieldError{Field: field, Reason: "must be 0 or greater"}
	}
	return value, nil
}

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// PathID parses a positive integer path parameter.
func PathID(r *http.Request, name string) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue(name), name)
}

// ParseMoneyField parses a decimal amount sent as a string.
func ParseMoneyField(raw string, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, FieldError{Field: field, Reason: "is required"}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, FieldError{Field: field, Reason: "must be a decimal number"}
	}
	return value, nil
}

// ParseDateField checks raw is a YYYY-MM-DD date and returns it unchanged.
func ParseDateField(raw string, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	if _, err := models.ParseDate(raw); err != nil {
		return "", FieldError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return raw, nil
}

// ParseLimitOffset reads optional limit and offset query parameters.
func ParseLimitOffset(r *http.Request, defaultLimit, maxLimit int64) (int64, int64, error) {
	query := r.URL.Query()
	limit := defaultLimit
	if raw := query.Get("limit"); raw != "" {
		value, err := ParsePositiveInt64Field(raw, "limit")
		if err != nil {
			return 0, 0, err
		}
		limit = min(value, maxLimit)
	}
	var offset int64
	if raw := query.Get("offset"); raw != "" {
		value, err := ParseNonNegativeInt64Field(raw, "offset")
		if err != nil {
			return 0, 0, err
		}
		offset = value
	}
	return limit, offset, nil
}
