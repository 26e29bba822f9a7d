package handlers

import (
	"HerbPass/domain"
	"HerbPass/internal/api/presenters"
	"HerbPass/pkg/batch"
	"HerbPass/pkg/verification"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	BatchHandler interface {
		CreateBatch(c *fiber.Ctx) error
		GetBatchView(c *fiber.Ctx) error
		GetBatchViewByCode(c *fiber.Ctx) error
	}

	batchHandler struct {
		batchService        batch.BatchService
		verificationService verification.VerificationService
		validator           *validator.Validate
	}
)

func NewBatchHandler(batchService batch.BatchService, verificationService verification.VerificationService, validator *validator.Validate) BatchHandler {
	return &batchHandler{
		batchService:        batchService,
		verificationService: verificationService,
		validator:           validator,
	}
}

func (h *batchHandler) CreateBatch(c *fiber.Ctx) error {
	req := new(domain.CreateBatchRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	// photo is optional; a JSON body or a form without it creates a bare batch
	var photo *domain.Upload
	if file, err := c.FormFile("photo"); err == nil {
		req.Photo = file
		if photo, err = readUpload(file); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateBatch, err)
	}

	res, err := h.batchService.CreateBatch(c.UserContext(), *req, photo)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedCreateBatch, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateBatch)
}

func (h *batchHandler) GetBatchView(c *fiber.Ctx) error {
	// a locator that is not a batch id is just an unknown batch
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageBatchNotFound, domain.ErrBatchNotFound)
	}

	view, found, err := h.verificationService.GetBatchView(c.UserContext(), id)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetBatch, err)
	}
	if !found {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageBatchNotFound, domain.ErrBatchNotFound)
	}

	return presenters.SuccessResponse(c, view, fiber.StatusOK, domain.MessageSuccessGetBatch)
}

func (h *batchHandler) GetBatchViewByCode(c *fiber.Ctx) error {
	view, found, err := h.verificationService.GetBatchViewByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetBatch, err)
	}
	if !found {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageBatchNotFound, domain.ErrBatchNotFound)
	}

	return presenters.SuccessResponse(c, view, fiber.StatusOK, domain.MessageSuccessGetBatch)
}
