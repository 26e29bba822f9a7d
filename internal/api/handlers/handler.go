package handlers

import (
	"HerbPass/domain"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrBatchNotFound),
		errors.Is(err, domain.ErrLabReportNotFound),
		errors.Is(err, domain.ErrArtifactNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrStorageWriteFailed),
		errors.Is(err, domain.ErrPersistenceFailure):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func readUpload(file *multipart.FileHeader) (*domain.Upload, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrValidation, file.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrValidation, file.Filename, err)
	}
	return &domain.Upload{Filename: file.Filename, Data: data}, nil
}

func paramID(c *fiber.Ctx, key string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(key), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, key)
	}
	return uint(id), nil
}
