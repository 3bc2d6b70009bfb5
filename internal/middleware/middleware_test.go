package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		id, _ := c.Locals(RequestIDHeader).(string)
		return c.SendString(id)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDHeader)
	assert.NotEmpty(t, generated)

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-42")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "client-42", resp.Header.Get(RequestIDHeader))
}

func TestAuditLevelsFollowStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logger))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/bad", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "nope") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusInternalServerError, "boom") })

	cases := []struct {
		path   string
		level  string
		status float64
	}{
		{"/ok", "INFO", 200},
		{"/bad", "WARN", 400},
		{"/boom", "ERROR", 500},
	}
	for _, tc := range cases {
		buf.Reset()
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil))
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
		assert.Equal(t, tc.level, entry["level"], tc.path)
		assert.Equal(t, tc.status, entry["status"], tc.path)
		assert.Equal(t, tc.path, entry["path"])
		assert.NotEmpty(t, entry["request_id"])
	}
}
