package fiscalsync

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteServiceError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteServiceError
		want string
	}{
		{
			name: "joins provider messages",
			err:  &RemoteServiceError{StatusCode: 400, Messages: []string{"Invalid fiscal_id", "Invalid name"}},
			want: "Invalid fiscal_id, Invalid name",
		},
		{
			name: "transport failure",
			err:  &RemoteServiceError{Cause: errors.New("connection refused")},
			want: "remote service unavailable: connection refused",
		},
		{
			name: "status only",
			err:  &RemoteServiceError{StatusCode: 503},
			want: "remote service returned status 503",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"configuration", NewConfigurationError("no key for tenant %s", "t1"), CodeConfiguration},
		{"remote", fmt.Errorf("wrapped: %w", &RemoteServiceError{StatusCode: 500}), CodeRemoteService},
		{"validation", NewValidationError("create failed", nil), CodeValidation},
		{"illegal state", NewIllegalStateError("Update", "no remote id", ErrNotLinked), CodeIllegalState},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestValidationError_WrapsRemoteFailure(t *testing.T) {
	remote := &RemoteServiceError{StatusCode: 422, Codes: []string{"C010"}, Messages: []string{"Duplicated"}}
	err := NewValidationError("create customers", remote)

	assert.Equal(t, "create customers: Duplicated", err.Error())
	var re *RemoteServiceError
	require.ErrorAs(t, err, &re)
	assert.True(t, re.HasCode("C010"))
	assert.False(t, re.HasCode("A001"))
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestNotImplemented(t *testing.T) {
	err := NotImplemented("registers", "ToCreatePayload")

	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Equal(t, CodeIllegalState, ErrorCode(err))
	assert.Contains(t, err.Error(), "registers")
}

func TestConfigurationError_IsMissingCredential(t *testing.T) {
	err := NewConfigurationError("api key not found")
	assert.ErrorIs(t, err, ErrMissingCredential)
}
