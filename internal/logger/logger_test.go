package logger

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/models"
)

func TestFormat(t *testing.T) {
	line := Format("WARN", "read degraded", "table", "rounds", "err", errors.New("boom"), "user", &models.User{ID: 7})
	assert.Equal(t, `WARN read degraded table="rounds" err=boom user=7`, line)

	assert.Equal(t, "INFO odd key=<missing>", Format("INFO", "odd", "key"))
}

func TestAppLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0), &config.Config{Env: "prod"})

	l.Debug("hidden")
	l.Info("visible", "n", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "INFO visible n=1")
}

func TestAppLoggerDebugInDev(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0), &config.Config{Env: "dev"})

	l.Debug("shown")
	assert.Contains(t, buf.String(), "DEBUG shown")
}
