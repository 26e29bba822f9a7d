package handlers

import (
	"HerbPass/domain"
	"HerbPass/internal/api/presenters"
	"HerbPass/internal/utils/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

type (
	ArtifactHandler interface {
		FetchArtifact(c *fiber.Ctx) error
	}

	artifactHandler struct {
		store storage.EvidenceStore
	}
)

func NewArtifactHandler(store storage.EvidenceStore) ArtifactHandler {
	return &artifactHandler{store: store}
}

// FetchArtifact serves stored evidence. Refs are never rewritten, so
// responses may be cached indefinitely.
func (h *artifactHandler) FetchArtifact(c *fiber.Ctx) error {
	data, err := h.store.Fetch(c.UserContext(), c.Params("ref"))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedFetchArtifact, err)
	}

	c.Set(fiber.HeaderContentType, mimetype.Detect(data).String())
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Status(fiber.StatusOK).Send(data)
}
