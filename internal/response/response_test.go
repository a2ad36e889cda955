package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"warehouse/internal/apperrors"
	"warehouse/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (*http.Response, map[string]interface{}) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, testErr)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestError(t *testing.T) {
	t.Run("insufficient stock carries remaining", func(t *testing.T) {
		resp, body := respond(t, apperrors.InsufficientStock(3))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Max quantity: 3", body["message"])
		assert.EqualValues(t, 3, body["remaining"])
	})

	t.Run("invalid credentials challenge", func(t *testing.T) {
		resp, body := respond(t, apperrors.ErrInvalidCredentials)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		assert.Equal(t, "Could not validate credentials", body["message"])
	})

	t.Run("validation lists fields", func(t *testing.T) {
		resp, body := respond(t, apperrors.Validation(map[string]string{"Title": "Field 'Title' failed on the 'required' tag"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["errors"], "Title")
	})

	t.Run("internal cause is hidden", func(t *testing.T) {
		resp, body := respond(t, errors.New("pq: password authentication failed"))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", body["message"])
	})

	t.Run("routing errors keep their status", func(t *testing.T) {
		resp, body := respond(t, fiber.ErrMethodNotAllowed)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "Method Not Allowed", body["message"])
	})
}
