package pod

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Registry error codes
const (
	CodeDuplicatePod  = "R001"
	CodeDuplicateType = "R002"
	CodeUnknownPod    = "R003"
	CodeUnknownType   = "R004"
	CodeInvalidName   = "R005"
	CodeNilType       = "R006"
)

var (
	// ErrDuplicatePod is returned when a pod name is registered twice.
	ErrDuplicatePod = errors.New("pod already exists")
	// ErrDuplicateType is returned when a type name is registered twice in one pod.
	ErrDuplicateType = errors.New("type already exists")
	// ErrUnknownPod is returned by a checked lookup of a missing pod.
	ErrUnknownPod = errors.New("unknown pod")
	// ErrUnknownType is returned by a checked lookup of a missing type.
	ErrUnknownType = errors.New("unknown type")
	// ErrInvalidName is returned for empty names and pod names containing "::".
	ErrInvalidName = errors.New("invalid name")
	// ErrNilType is returned when the TypeConstructor produces no type.
	ErrNilType = errors.New("type constructor returned nil")
)

// Error describes a failed registry operation
type Error struct {
	Code string // "R001", "R002", etc.
	Kind error  // one of the Err* sentinels
	Name string // pod name or qualified type name
}

func newError(kind error, name string) *Error {
	return &Error{
		Code: codeFor(kind),
		Kind: kind,
		Name: name,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Kind, e.Name)
}

// Unwrap exposes the sentinel so errors.Is works
func (e *Error) Unwrap() error {
	return e.Kind
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Name    string `json:"name"`
	}{
		Code:    e.Code,
		Message: e.Kind.Error(),
		Name:    e.Name,
	})
}

// Code returns the registry error code carried by err, or "" when err is not
// a registry error.
func Code(err error) string {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Code
	}
	return ""
}

func codeFor(kind error) string {
	switch kind {
	case ErrDuplicatePod:
		return CodeDuplicatePod
	case ErrDuplicateType:
		return CodeDuplicateType
	case ErrUnknownPod:
		return CodeUnknownPod
	case ErrUnknownType:
		return CodeUnknownType
	case ErrInvalidName:
		return CodeInvalidName
	case ErrNilType:
		return CodeNilType
	default:
		return ""
	}
}
