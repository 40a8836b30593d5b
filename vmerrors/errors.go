package vmerrors

import (
	"errors"
	"strings"
)

// Program (P) Errors
var (
	ErrPMalformedProgram = errors.New("P1|MalformedProgram: Program text cannot be parsed into integers.")
)

// VM execution (V) Errors
var (
	ErrVInvalidOpcode        = errors.New("V1|InvalidOpcode: Decoded opcode is outside the instruction set.")
	ErrVInvalidParameterMode = errors.New("V2|InvalidParameterMode: Decoded parameter mode is not position, immediate or relative.")
	ErrVIllegalWriteTarget   = errors.New("V3|IllegalWriteTarget: Immediate mode used for a destination parameter.")
	ErrVNegativeAddress      = errors.New("V4|NegativeAddress: Memory access computed to a negative address.")
	ErrVOverflow             = errors.New("V5|Overflow: Value does not fit in the configured word width.")
	ErrVMemoryLimit          = errors.New("V6|MemoryLimit: Memory growth exceeds the configured cell limit.")
)

// State machine (S) Errors
var (
	ErrSOutOfPhaseCall  = errors.New("S1|OutOfPhaseCall: Operation invoked in a state that does not allow it.")
	ErrSUninitializedIO = errors.New("S2|UninitializedIO: Blocking input or output used before being configured.")
	ErrSFaulted         = errors.New("S3|Faulted: Instance hit an unrecoverable error and cannot be resumed.")
	ErrSInputExhausted  = errors.New("S4|InputExhausted: Input source has no more values.")
)

// Configuration (C) Errors
var (
	ErrCInvalidConfig = errors.New("C1|InvalidConfig: Conflicting or out of range configuration.")
)

// Driver (R) Errors
var (
	ErrRDeadlock        = errors.New("R1|Deadlock: Every live instance is blocked on input with no pending values.")
	ErrRInvalidTopology = errors.New("R2|InvalidTopology: Driver topology needs at least one instance.")
)

// Trace (T) Errors
var (
	ErrTTraceMismatch = errors.New("T1|TraceMismatch: Two execution traces diverge.")
)

// known is ordered so that root causes are reported before ErrSFaulted,
// which wraps them.
var known = []error{
	ErrPMalformedProgram,
	ErrVInvalidOpcode,
	ErrVInvalidParameterMode,
	ErrVIllegalWriteTarget,
	ErrVNegativeAddress,
	ErrVOverflow,
	ErrVMemoryLimit,
	ErrSOutOfPhaseCall,
	ErrSUninitializedIO,
	ErrSInputExhausted,
	ErrCInvalidConfig,
	ErrRDeadlock,
	ErrRInvalidTopology,
	ErrTTraceMismatch,
	ErrSFaulted,
}

// Known returns the sentinel in the error chain of err, or nil.
func Known(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// GetErrorName extracts the error name, e.g. "InvalidOpcode".
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	k := Known(err)
	if k == nil {
		return err.Error()
	}
	parts := strings.SplitN(k.Error(), "|", 2)
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

func GetErrorNames(errs []error) []string {
	errStrs := make([]string, len(errs))
	for i, err := range errs {
		errStrs[i] = GetErrorName(err)
	}
	return errStrs
}

// GetErrorCode extracts the error code, e.g. "V1".
func GetErrorCode(err error) string {
	k := Known(err)
	if k == nil {
		return ""
	}
	parts := strings.SplitN(k.Error(), "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	if code == "" {
		return ""
	}
	return code + "_" + GetErrorName(err)
}

// GetErrorDesc extracts the sentinel's description.
func GetErrorDesc(err error) string {
	k := Known(err)
	if k == nil {
		return "DESC NOT SET"
	}
	parts := strings.SplitN(k.Error(), ":", 2)
	return strings.TrimSpace(parts[1])
}
