package accel

import (
	"errors"
	"fmt"
)

// ErrorCode enumerates backend failures. Callers do not inspect backend
// detail beyond the code; any of them means accelerated reduction is
// unavailable for the current session.
type ErrorCode string

const (
	ErrCodeInstanceCreation     ErrorCode = "INSTANCE_CREATION"
	ErrCodeNoSuitableDevice     ErrorCode = "NO_SUITABLE_DEVICE"
	ErrCodeDeviceCreation       ErrorCode = "DEVICE_CREATION"
	ErrCodeOutOfMemory          ErrorCode = "OUT_OF_MEMORY"
	ErrCodePipelineCreation     ErrorCode = "PIPELINE_CREATION"
	ErrCodeDeviceAlloc          ErrorCode = "DEVICE_ALLOC"
	ErrCodeDescriptorSetAdd     ErrorCode = "DESCRIPTOR_SET_ADD"
	ErrCodeDescriptorSetBuild   ErrorCode = "DESCRIPTOR_SET_BUILD"
	ErrCodeDescriptorSetMissing ErrorCode = "DESCRIPTOR_SET_MISSING"
	ErrCodeCommandBufferBuild   ErrorCode = "COMMAND_BUFFER_BUILD"
	ErrCodeDispatch             ErrorCode = "DISPATCH"
	ErrCodeExec                 ErrorCode = "EXEC"
	ErrCodeFlush                ErrorCode = "FLUSH"
)

var messages = map[ErrorCode]string{
	ErrCodeInstanceCreation:     "error creating compute instance",
	ErrCodeNoSuitableDevice:     "no suitable compute device",
	ErrCodeDeviceCreation:       "error creating compute device",
	ErrCodeOutOfMemory:          "out of memory",
	ErrCodePipelineCreation:     "error creating compute pipeline",
	ErrCodeDeviceAlloc:          "failed to allocate memory on device",
	ErrCodeDescriptorSetAdd:     "failed to add buffer to descriptor set",
	ErrCodeDescriptorSetBuild:   "failed to build descriptor set",
	ErrCodeDescriptorSetMissing: "descriptor set 0 is missing",
	ErrCodeCommandBufferBuild:   "failed to build command buffer",
	ErrCodeDispatch:             "failed to dispatch kernel",
	ErrCodeExec:                 "failed to execute kernel",
	ErrCodeFlush:                "failed to flush pipeline",
}

// Error is a backend failure.
type Error struct {
	Code ErrorCode

	// Err is the backend-specific cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg, ok := messages[e.Code]
	if !ok {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// IsAcceleratedError returns true if err wraps an *Error.
func IsAcceleratedError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

// IsOutOfMemory returns true if err is an OUT_OF_MEMORY backend failure.
func IsOutOfMemory(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == ErrCodeOutOfMemory
	}
	return false
}
