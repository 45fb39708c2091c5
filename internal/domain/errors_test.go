package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want ResultStatus
	}{
		{"nil", nil, StatusOK},
		{"validation", &ValidationError{Field: "IDPEL", Reason: "missing"}, StatusValidationError},
		{"wrapped validation", fmt.Errorf("diff group DMP: %w", &ValidationError{Group: "DMP"}), StatusValidationError},
		{"render", &RenderError{Cause: cause}, StatusRenderError},
		{"empty result", &EmptyResultNotice{Message: "nothing new"}, StatusEmptyResult},
		{"in progress", ErrCheckInProgress, StatusFailed},
		{"other", cause, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `validation: group "DMP": field "IDPEL": key column not found`,
		(&ValidationError{Group: "DMP", Field: "IDPEL", Reason: "key column not found"}).Error())
	assert.Equal(t, "validation: no input",
		(&ValidationError{Reason: "no input"}).Error())

	cause := errors.New("styled")
	re := &RenderError{Cause: cause, FallbackCause: errors.New("plain")}
	assert.Equal(t, "render failed: styled; fallback failed: plain", re.Error())
	assert.ErrorIs(t, re, cause)
}
