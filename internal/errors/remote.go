package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is a structured rejection from the remote REST API.
// StatusCode is zero when the request never produced a response.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "remote api: status %d", e.StatusCode)
	} else {
		b.WriteString("remote api")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString(" (")
		for i, name := range names {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %s", name, strings.Join(e.Fields[name], ", "))
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap classifies the error into the domain taxonomy.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch {
	case e.StatusCode == 0:
		errs = append(errs, ErrTransientNetwork)
	case e.StatusCode == http.StatusUnauthorized:
		errs = append(errs, ErrUnauthorized)
	case e.StatusCode == http.StatusForbidden:
		errs = append(errs, ErrForbidden)
	case e.StatusCode == http.StatusNotFound:
		errs = append(errs, ErrNotFound)
	case e.StatusCode == http.StatusConflict:
		errs = append(errs, ErrConflict)
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		errs = append(errs, ErrTransientNetwork)
	case e.StatusCode >= 400 && e.StatusCode < 500:
		errs = append(errs, ErrValidation)
	default:
		errs = append(errs, ErrTransientNetwork)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// MutationError is returned by every failed mutation after its rollback completed.
type MutationError struct {
	Entity     string
	Operation  string
	MutationID string
	Message    string
	Err        error
}

func (e *MutationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s %s failed: %s", e.Entity, e.Operation, msg)
}

// Unwrap exposes both ErrMutationFailed and the underlying cause.
func (e *MutationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMutationFailed}
	}
	return []error{ErrMutationFailed, e.Err}
}
