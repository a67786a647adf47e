package file

import "errors"

var (
	ErrInvalidConfig      = errors.New("file: invalid configuration")
	ErrFailedToLoadConfig = errors.New("file: failed to load AWS config")
	ErrInvalidKey         = errors.New("file: invalid object key")

	ErrFileNotFound            = errors.New("file: not found")
	ErrFailedToWriteFile       = errors.New("file: failed to write")
	ErrFailedToDeleteFile      = errors.New("file: failed to delete")
	ErrFailedToCreateDirectory = errors.New("file: failed to create directory")
	ErrFailedToGetAbsolutePath = errors.New("file: failed to resolve absolute path")

	ErrBucketNotFound     = errors.New("file: bucket not found")
	ErrAccessDenied       = errors.New("file: access denied")
	ErrServiceUnavailable = errors.New("file: storage temporarily unavailable")
	ErrOperationTimeout   = errors.New("file: operation timed out")
	ErrOperationCanceled  = errors.New("file: operation canceled")
)
