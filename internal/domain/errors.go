package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-visible input problem, e.g. a missing key column.
type ValidationError struct {
	Group  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Group != "" && e.Field != "":
		return fmt.Sprintf("validation: group %q: field %q: %s", e.Group, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("validation: field %q: %s", e.Field, e.Reason)
	case e.Group != "":
		return fmt.Sprintf("validation: group %q: %s", e.Group, e.Reason)
	}
	return "validation: " + e.Reason
}

// RenderError reports that neither the styled renderer nor the fallback produced a workbook.
type RenderError struct {
	Cause         error
	FallbackCause error
}

func (e *RenderError) Error() string {
	if e.FallbackCause != nil {
		return fmt.Sprintf("render failed: %v; fallback failed: %v", e.Cause, e.FallbackCause)
	}
	return fmt.Sprintf("render failed: %v", e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// EmptyResultNotice is an informational condition, not a failure:
// there was nothing to put in the requested report.
type EmptyResultNotice struct {
	Message string
}

func (e *EmptyResultNotice) Error() string {
	return e.Message
}

// ErrCheckInProgress is returned when a check is started while another one runs.
var ErrCheckInProgress = errors.New("a check is already in progress")

// ResultStatus is the status a caller shows for a finished operation.
type ResultStatus string

const (
	StatusOK              ResultStatus = "ok"
	StatusValidationError ResultStatus = "validation_error"
	StatusRenderError     ResultStatus = "render_error"
	StatusEmptyResult     ResultStatus = "empty_result"
	StatusFailed          ResultStatus = "failed"
)

// StatusOf classifies err into a ResultStatus.
func StatusOf(err error) ResultStatus {
	if err == nil {
		return StatusOK
	}
	var ve *ValidationError
	var re *RenderError
	var en *EmptyResultNotice
	switch {
	case errors.As(err, &ve):
		return StatusValidationError
	case errors.As(err, &re):
		return StatusRenderError
	case errors.As(err, &en):
		return StatusEmptyResult
	}
	return StatusFailed
}
