package vmerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	testCases := []struct {
		err      error
		code     string
		name     string
		codeName string
	}{
		{ErrVInvalidOpcode, "V1", "InvalidOpcode", "V1_InvalidOpcode"},
		{fmt.Errorf("ip 12: %w", ErrVIllegalWriteTarget), "V3", "IllegalWriteTarget", "V3_IllegalWriteTarget"},
		{fmt.Errorf("%w: ip 4: %w", ErrSFaulted, ErrVNegativeAddress), "V4", "NegativeAddress", "V4_NegativeAddress"},
		{ErrSFaulted, "S3", "Faulted", "S3_Faulted"},
		{fmt.Errorf("token 3: %w", ErrPMalformedProgram), "P1", "MalformedProgram", "P1_MalformedProgram"},
	}
	for _, tc := range testCases {
		t.Run(tc.codeName, func(t *testing.T) {
			assert.Equal(t, tc.code, GetErrorCode(tc.err))
			assert.Equal(t, tc.name, GetErrorName(tc.err))
			assert.Equal(t, tc.codeName, GetErrorCodeWithName(tc.err))
		})
	}
}

func TestUnknownError(t *testing.T) {
	err := errors.New("something else")
	assert.Nil(t, Known(err))
	assert.Equal(t, "", GetErrorCode(err))
	assert.Equal(t, "something else", GetErrorName(err))
	assert.Equal(t, "DESC NOT SET", GetErrorDesc(err))
	assert.Equal(t, "No Error", GetErrorName(nil))
	assert.Equal(t, []string{"Overflow", "Deadlock"}, GetErrorNames([]error{ErrVOverflow, ErrRDeadlock}))
}

func TestErrorDesc(t *testing.T) {
	assert.Equal(t, "Input source has no more values.", GetErrorDesc(fmt.Errorf("in: %w", ErrSInputExhausted)))
}
