package search

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds per the taxonomy: validation short-circuits before any graph
// call, not-found and search errors propagate to the HTTP surface, inference
// and LLM failures fold into the response.

// ValidationError carries the structured issue list for a 400 response.
type ValidationError struct {
	Issues []ValidationIssue
}

type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Field + ": " + issue.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NotFoundError signals an identifier missing from the graph (404).
type NotFoundError struct {
	Code string // machine code, e.g. engineer_not_found
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.ID)
}

// SearchError wraps a graph query failure (500). The underlying driver message
// is surfaced verbatim in the response details.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return "SEARCH_ERROR: " + e.Err.Error()
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// AsValidation extracts a *ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// AsNotFound extracts a *NotFoundError from an error chain.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	ok := errors.As(err, &nf)
	return nf, ok
}

// AsSearch extracts a *SearchError from an error chain.
func AsSearch(err error) (*SearchError, bool) {
	var se *SearchError
	ok := errors.As(err, &se)
	return se, ok
}
