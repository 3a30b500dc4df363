// Package errors provides the recorder's error taxonomy.
// Every failure that crosses a component boundary is an *AppError carrying a Code,
// so the loop can tell fatal setup/capture failures from per-display ones.
package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Code classifies an AppError.
type Code int

const (
	CodeUnknown Code = iota
	CodeSetup        // directory conflicts, capture backend init failure
	CodeCapture      // capture enumeration failed for a whole tick
	CodeWrite        // persisting a capture failed
	CodeDelete       // removing a discarded or superseded file failed
	CodeHash         // decoding or fingerprinting an image failed
	CodeConfig       // invalid configuration
)

var codeNames = map[Code]string{
	CodeUnknown: "UNKNOWN",
	CodeSetup:   "SETUP",
	CodeCapture: "CAPTURE",
	CodeWrite:   "WRITE",
	CodeDelete:  "DELETE",
	CodeHash:    "HASH",
	CodeConfig:  "CONFIG",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CODE(%d)", int(c))
}

// grpcCodeMap maps error codes to gRPC status codes.
var grpcCodeMap = map[Code]codes.Code{
	CodeUnknown: codes.Unknown,
	CodeSetup:   codes.FailedPrecondition,
	CodeCapture: codes.Unavailable,
	CodeWrite:   codes.Internal,
	CodeDelete:  codes.Internal,
	CodeHash:    codes.DataLoss,
	CodeConfig:  codes.InvalidArgument,
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// Fatal reports whether the error ends the process rather than one display's tick.
func (e *AppError) Fatal() bool {
	return e.Code == CodeSetup || e.Code == CodeCapture || e.Code == CodeConfig
}

// GRPCCode returns the corresponding gRPC status code.
func (e *AppError) GRPCCode() codes.Code {
	if c, ok := grpcCodeMap[e.Code]; ok {
		return c
	}
	return codes.Unknown
}

// GRPCStatus returns a gRPC status with the code and metadata attached as a Struct detail.
func (e *AppError) GRPCStatus() *status.Status {
	st := status.New(e.GRPCCode(), e.Error())
	fields := map[string]any{"code": e.Code.String()}
	for k, v := range e.Metadata {
		fields[k] = v
	}
	detail, err := structpb.NewStruct(fields)
	if err != nil {
		return st
	}
	if withDetail, err := st.WithDetails(detail); err == nil {
		return withDetail
	}
	return st
}

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// CodeOf returns the code of the first AppError in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsFatal reports whether err should end the run. Errors outside the
// AppError taxonomy are treated as fatal.
func IsFatal(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Fatal()
	}
	return err != nil
}

// IsCode checks if an error chain contains an AppError with a specific code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
