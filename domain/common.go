package domain

import (
	"errors"
)

const (
	BatchCodePrefix = "HB-"

	DefaultPharmaStatus = "Packaged"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageSuccessPing          = "pong, its works"
	MessageFailedFetchArtifact  = "failed to fetch artifact"

	// ErrValidation covers missing required fields and empty status/URL input.
	ErrValidation = errors.New("validation error")
	// ErrUnsupportedMediaType is returned before any byte is written.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrBatchNotFound        = errors.New("batch not found")
	ErrLabReportNotFound    = errors.New("lab report not found")
	ErrArtifactNotFound     = errors.New("artifact not found")
	ErrStorageWriteFailed   = errors.New("storage write failed")
	ErrPersistenceFailure   = errors.New("persistence failure")
)

// Upload is an artifact received from a caller together with the file name
// it declared.
type Upload struct {
	Filename string
	Data     []byte
}
