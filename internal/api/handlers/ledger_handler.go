package handlers

import (
	"HerbPass/domain"
	"HerbPass/internal/api/presenters"
	"HerbPass/pkg/ledger"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	LedgerHandler interface {
		AppendLabReport(c *fiber.Ctx) error
		VerifyLabReport(c *fiber.Ctx) error
		AppendStatus(c *fiber.Ctx) error
		GetCurrentStatus(c *fiber.Ctx) error
	}

	ledgerHandler struct {
		ledgerService ledger.LedgerService
		validator     *validator.Validate
	}
)

func NewLedgerHandler(ledgerService ledger.LedgerService, validator *validator.Validate) LedgerHandler {
	return &ledgerHandler{
		ledgerService: ledgerService,
		validator:     validator,
	}
}

func (h *ledgerHandler) AppendLabReport(c *fiber.Ctx) error {
	req := new(domain.AppendLabReportRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	file, err := c.FormFile("report")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest,
			fmt.Errorf("%w: report file is required", domain.ErrValidation))
	}
	req.Report = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAppendLabReport, err)
	}

	report, err := readUpload(file)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.ledgerService.AppendLabReport(c.UserContext(), req.BatchID, *report)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAppendLabReport, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAppendLabReport)
}

func (h *ledgerHandler) VerifyLabReport(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedVerifyLabReport, err)
	}

	res, err := h.ledgerService.VerifyLabReport(c.UserContext(), id)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedVerifyLabReport, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessVerifyLabReport)
}

func (h *ledgerHandler) AppendStatus(c *fiber.Ctx) error {
	req := new(domain.AppendStatusRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAppendStatus, err)
	}

	res, err := h.ledgerService.AppendStatus(c.UserContext(), req.BatchID, req.Status)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAppendStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAppendStatus)
}

func (h *ledgerHandler) GetCurrentStatus(c *fiber.Ctx) error {
	batchID, err := paramID(c, "batchId")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetStatus, err)
	}

	res, found, err := h.ledgerService.CurrentStatus(c.UserContext(), batchID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetStatus, err)
	}
	if !found {
		return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageNoStatusYet)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetStatus)
}
