// Package errors defines the structured error type shared by the decoder,
// link encoder, artwork resolver and export pipeline.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode identifies an error category independent of its message.
type ErrorCode string

const (
	// ErrIO covers filesystem access: missing files, permissions, non-regular files.
	ErrIO ErrorCode = "IO"
	// ErrManifestFormat means shortcuts.vdf is malformed or unsupported.
	ErrManifestFormat ErrorCode = "MANIFEST_FORMAT"
	// ErrNoMatch means a target substring matched zero records.
	ErrNoMatch ErrorCode = "NO_MATCH"
	// ErrEncode means a link field cannot be represented in the link format.
	ErrEncode ErrorCode = "ENCODE"
	// ErrImageDecode means source artwork bytes are not a valid image.
	ErrImageDecode ErrorCode = "IMAGE_DECODE"
	// ErrAssetMissing means no artwork source is available, default included.
	ErrAssetMissing ErrorCode = "ASSET_MISSING"

	// ErrLinkFormat means an existing .lnk file could not be decoded.
	ErrLinkFormat ErrorCode = "LINK_FORMAT"

	ErrConfig ErrorCode = "CONFIG"
	ErrLocked ErrorCode = "LOCKED"
)

// Error is a coded error with diagnostic details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface. Details are appended in key order so
// the text is stable.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString(")")
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %v", e.Wrapped)
	}
	return b.String()
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates an error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err under code. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Code returns the code of the first *Error in err's chain, or "" if none.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

// Detail returns a detail value from the first *Error in err's chain.
func Detail(err error, key string) (interface{}, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	v, ok := e.Details[key]
	return v, ok
}
