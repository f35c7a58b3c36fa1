package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/studytrack-api/internal/logger"
)

type recordingLogger struct {
	logger.Nop
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) Info(msg string, kv ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, logger.Format("INFO", msg, kv...))
}

func TestRequestLoggerRecordsErrorStatus(t *testing.T) {
	rec := &recordingLogger{}
	app := fiber.New()
	app.Use(RequestLogger(rec))
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	require.Len(t, rec.lines, 1)
	assert.Contains(t, rec.lines[0], `method="GET" path="/teapot" status=418`)
	assert.Contains(t, rec.lines[0], "user=anonymous")
}
