package presenters

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ErrorLocal is the fiber local under which ErrorResponse leaves the full
// error for the request logger.
const ErrorLocal = "presenters.error"

type Response struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data interface{}, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	res := Response{
		Status:  false,
		Message: message,
	}
	if err != nil {
		c.Locals(ErrorLocal, err)
		res.Error = err.Error()
		// server-side failures wrap driver and storage messages; only the
		// status text leaves the process
		if statusCode >= fiber.StatusInternalServerError {
			res.Error = utils.StatusMessage(statusCode)
		}
	}
	return c.Status(statusCode).JSON(res)
}

// ErrorHandler renders errors that escape handlers, such as unknown routes or
// oversized bodies, in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	return ErrorResponse(c, code, message, err)
}
