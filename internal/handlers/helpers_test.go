package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tcw1/internal/models"
	"tcw1/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// newTestApp returns an app whose requests carry claims, or none when nil.
func newTestApp(claims *models.UserClaims) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if claims != nil {
			utils.SetUserClaims(c, claims)
		}
		return c.Next()
	})
	return app
}

func userClaimsFor(id uint, role string) *models.UserClaims {
	return &models.UserClaims{UserID: id, Role: role, Permissions: models.GetDefaultPermissions(role)}
}

type testResponse struct {
	Status  int
	Body    map[string]interface{}
	Cookies []*http.Cookie
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) testResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := testResponse{Status: resp.StatusCode, Cookies: resp.Cookies()}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	return out
}
