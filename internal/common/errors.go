package common

import (
	"errors"
	"fmt"
)

// Stage identifies which part of the extraction pipeline produced an
// error. Callers use it to decide between retrying and failing fast.
type Stage string

const (
	StagePrecondition  Stage = "precondition"
	StageConfig        Stage = "config"
	StageRecognition   Stage = "recognition"
	StageTransport     Stage = "transport"
	StageNormalization Stage = "normalization"
)

// AppError represents application-specific errors, tagged with the
// pipeline stage that produced them.
type AppError struct {
	Code    string
	Stage   Stage
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNoImage         = errors.New("no image data provided")
	ErrUnknownProvider = errors.New("unknown provider")
)

func NewAppError(code string, stage Stage, message string, cause error) *AppError {
	return &AppError{Code: code, Stage: stage, Message: message, Cause: cause}
}

// NewPreconditionError reports a client fault detected before any I/O.
func NewPreconditionError(message string, cause error) *AppError {
	return NewAppError("PRECONDITION", StagePrecondition, message, cause)
}

// NewConfigError reports missing or invalid configuration. Raised
// before any network call is made.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError("CONFIG_ERROR", StageConfig, message, cause)
}

// WrapStage annotates err with a stage tag, preserving the original
// error for errors.Is / errors.As. If err already carries a stage it is
// returned unchanged.
func WrapStage(stage Stage, message string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.Stage != "" {
		return err
	}
	return NewAppError("STAGE_ERROR", stage, message, err)
}

// StageOf returns the stage tag attached to err, or "" if none.
func StageOf(err error) Stage {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}
