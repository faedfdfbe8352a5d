// Package errors defines the sentinel error values the FAT32 engine and shell use to
// distinguish silent no-ops (not-found, already-exists) from fatal I/O or corruption
// conditions.
package errors

import "fmt"

// FSError is a wrapper around a sentinel condition, with a customizable, chainable
// message. It implements the standard `error` interface and supports `errors.Is`
// against the sentinel it was derived from.
type FSError interface {
	error
	WithMessage(message string) FSError
	Wrap(err error) FSError
	Unwrap() error
}

type sentinelError string

const (
	// ErrNotFound indicates a path component did not resolve to an entry.
	ErrNotFound = sentinelError("no such file or directory")
	// ErrExists indicates an entry with the requested name is already present.
	ErrExists = sentinelError("file exists")
	// ErrNotADirectory indicates an operation expected a directory but found a file.
	ErrNotADirectory = sentinelError("not a directory")
	// ErrIsADirectory indicates an operation expected a file but found a directory.
	ErrIsADirectory = sentinelError("is a directory")
	// ErrInvalidArgument indicates a malformed argument, e.g. a name with illegal
	// characters or a path that can't be parsed.
	ErrInvalidArgument = sentinelError("invalid argument")
	// ErrIOFailed indicates the underlying image stream returned an I/O error.
	ErrIOFailed = sentinelError("input/output error")
	// ErrFileSystemCorrupted indicates an on-disk structure failed an invariant check.
	ErrFileSystemCorrupted = sentinelError("file system structure needs cleaning")
	// ErrNameTooLong indicates a name exceeds the 255-character LFN limit.
	ErrNameTooLong = sentinelError("file name too long")
	// ErrNoSpaceOnDevice indicates the cluster allocator found no free cluster.
	ErrNoSpaceOnDevice = sentinelError("no space left on device")
	// ErrInvalidFileSystem indicates the mounted image is not a FAT32 volume.
	ErrInvalidFileSystem = sentinelError("wrong medium type")
	// ErrNotImplemented indicates an operation this engine intentionally never
	// implements (delete, rename, partial writes, ...).
	ErrNotImplemented = sentinelError("function not implemented")
)

func (e sentinelError) Error() string { return string(e) }

func (e sentinelError) WithMessage(message string) FSError {
	return &wrappedError{sentinel: e, message: fmt.Sprintf("%s: %s", e, message)}
}

func (e sentinelError) Wrap(err error) FSError {
	return &wrappedError{sentinel: e, original: err, message: fmt.Sprintf("%s: %s", e, err)}
}

func (e sentinelError) Unwrap() error { return nil }

// wrappedError carries a contextual message and/or an underlying cause while still
// unwrapping to its originating sentinel, so callers can keep using `errors.Is`.
type wrappedError struct {
	sentinel sentinelError
	original error
	message  string
}

func (e *wrappedError) Error() string { return e.message }

func (e *wrappedError) WithMessage(message string) FSError {
	return &wrappedError{
		sentinel: e.sentinel,
		original: e.original,
		message:  fmt.Sprintf("%s: %s", e.message, message),
	}
}

func (e *wrappedError) Wrap(err error) FSError {
	return &wrappedError{
		sentinel: e.sentinel,
		original: err,
		message:  fmt.Sprintf("%s: %s", e.message, err),
	}
}

// Unwrap exposes the wrapped cause first, falling back to the sentinel, so
// `errors.Is(err, ErrNotFound)` succeeds however deep the wrapping goes.
func (e *wrappedError) Unwrap() error {
	if e.original != nil {
		return e.original
	}
	return e.sentinel
}

// Is lets `errors.Is(err, ErrNotFound)` match a wrappedError built from ErrNotFound
// even when an unrelated original cause is also chained in.
func (e *wrappedError) Is(target error) bool {
	return e.sentinel == target
}
