package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// parseInstant accepts RFC 3339 timestamps and plain dates, which mean
// midnight UTC.
func parseInstant(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if d, err := time.Parse(dateLayout, value); err == nil {
		return d, nil
	}
	return time.Time{}, sharedDomain.NewValidationError(field, fmt.Sprintf("%q is neither RFC 3339 nor YYYY-MM-DD", value))
}

// parseWindow reads from and to. from is required; a missing to is from
// plus def.
func parseWindow(r *http.Request, def time.Duration) (domain.Window, error) {
	q := r.URL.Query()

	v := q.Get("from")
	if v == "" {
		return domain.Window{}, domain.ErrWindowRequired
	}
	from, err := parseInstant("from", v)
	if err != nil {
		return domain.Window{}, err
	}

	to := from.Add(def)
	if v := q.Get("to"); v != "" {
		t, err := parseInstant("to", v)
		if err != nil {
			return domain.Window{}, err
		}
		to = t
	}

	return domain.Window{From: from, To: to}, nil
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, sharedDomain.NewValidationError(field, fmt.Sprintf("%q is not YYYY-MM-DD", value))
	}
	return d, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, sharedDomain.NewValidationError(name, "is not a valid id")
	}
	return id, nil
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if sharedDomain.IsValidation(err) {
			return err
		}
		return sharedDomain.NewValidationError("body", err.Error())
	}
	return nil
}
