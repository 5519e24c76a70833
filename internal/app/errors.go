// Package app provides the main application structure and coordination.
package app

import "errors"

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning indicates the application is not running.
	ErrNotRunning = errors.New("application not running")

	// ErrNoActiveBuffer indicates no buffer is currently active in the session.
	ErrNoActiveBuffer = errors.New("no active buffer")

	// ErrBufferNotFound indicates a buffer was not found in the session.
	ErrBufferNotFound = errors.New("buffer not found")

	// ErrBufferAlreadyOpen indicates a file is already open as a buffer.
	ErrBufferAlreadyOpen = errors.New("buffer already open")

	// ErrUnsavedChanges indicates there are unsaved changes.
	ErrUnsavedChanges = errors.New("unsaved changes")

	// ErrInitialization indicates an initialization failure.
	ErrInitialization = errors.New("initialization failed")

	// ErrShutdownTimeout indicates shutdown timed out.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// FileError represents a failed file-system operation against a buffer.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

// ErrNoFilePath indicates the buffer has no backing file path.
var ErrNoFilePath = &FileError{Op: "save", Err: errors.New("no file path")}

// ErrReadOnly indicates the buffer is read-only.
var ErrReadOnly = errors.New("buffer is read-only")
