package presenters

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponseDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   string
	}{
		{name: "client error keeps detail", status: fiber.StatusBadRequest, err: errors.New("validation error: herb_name is required"), want: "validation error: herb_name is required"},
		{name: "not found keeps detail", status: fiber.StatusNotFound, err: errors.New("batch not found: batch 9"), want: "batch not found: batch 9"},
		{name: "unavailable hides detail", status: fiber.StatusServiceUnavailable, err: errors.New("put object s3://herbpass/uploads/lab_x.pdf: AccessDenied"), want: "Service Unavailable"},
		{name: "internal hides detail", status: fiber.StatusInternalServerError, err: errors.New("pq: syntax error"), want: "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return ErrorResponse(c, tt.status, "failed", tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var body Response
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, body.Status)
			assert.Equal(t, "failed", body.Message)
			assert.Equal(t, tt.want, body.Error)
		})
	}
}
