package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

const maxBodyBytes = 64 << 10

var errMissingRange = errors.New("start and end dates are required")

// RequestBodyParser reads a JSON object or form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	err      error
}

// NewRequestBodyParser reads and parses the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if p.err != nil {
		return p
	}
	trimmed := strings.TrimSpace(string(p.body))
	switch {
	case trimmed == "":
		p.formData = url.Values{}
	case strings.HasPrefix(trimmed, "{"):
		p.jsonData = map[string]any{}
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
		}
	default:
		p.formData, p.err = url.ParseQuery(trimmed)
	}
	return p
}

// Err returns the read or parse error, if any.
func (p *RequestBodyParser) Err() error {
	return p.err
}

// IsJSON reports whether the body was a JSON object.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Get returns a sanitized field value, "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	return sanitizeInput(p.formData.Get(key))
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// fieldErrors maps input names to messages shown next to the field.
type fieldErrors map[string]string

func (fe fieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, k := range []string{"date", "amount", "category", "description"} {
		if msg, ok := fe[k]; ok {
			parts = append(parts, k+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// transactionInput is the raw add-form data, kept to refill the form.
type transactionInput struct {
	Date        string
	Amount      string
	Category    string
	Description string
}

func readTransactionInput(get func(string) string) transactionInput {
	return transactionInput{
		Date:        get("date"),
		Amount:      get("amount"),
		Category:    get("category"),
		Description: get("description"),
	}
}

// parse applies the add-form constraints: a valid date, an amount of at
// least 0.01 rounded to cents, and a known category.
func (in transactionInput) parse() (core.Transaction, fieldErrors) {
	errs := fieldErrors{}
	var t core.Transaction

	if in.Date == "" {
		errs["date"] = "Date is required"
	} else if d, err := parseDateInput(in.Date); err != nil {
		errs["date"] = "Enter a date as YYYY-MM-DD or DD-MM-YYYY"
	} else {
		t.Date = d
	}

	if amt, err := core.ParseAmount(in.Amount); err != nil {
		errs["amount"] = "Enter a positive amount"
	} else if amt = amt.Round(2); amt.LessThan(core.MinAmount) {
		errs["amount"] = "Amount must be at least 0.01"
	} else {
		t.Amount = amt
	}

	if c, err := core.ParseCategory(in.Category); err != nil {
		errs["category"] = "Choose Income or Expense"
	} else {
		t.Category = c
	}

	t.Description = in.Description

	if len(errs) > 0 {
		return core.Transaction{}, errs
	}
	return t, nil
}

// parseRange reads start and end from the query. ok is false when either
// is missing.
func parseRange(q url.Values) (start, end core.Date, ok bool, err error) {
	rawStart := strings.TrimSpace(q.Get("start"))
	rawEnd := strings.TrimSpace(q.Get("end"))
	if rawStart == "" || rawEnd == "" {
		return core.Date{}, core.Date{}, false, nil
	}
	if start, err = parseDateInput(rawStart); err != nil {
		return core.Date{}, core.Date{}, true, fmt.Errorf("start: %w", err)
	}
	if end, err = parseDateInput(rawEnd); err != nil {
		return core.Date{}, core.Date{}, true, fmt.Errorf("end: %w", err)
	}
	return start, end, true, nil
}
