package logger

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/models"
)

// Logger writes leveled messages followed by key/value pairs.
//
//	log.Error("upload failed", "topicId", id, "err", err, "user", usr)
//
// An error value is forwarded to the error reporter as the primary payload
// and a *models.User value is attached as the acting person.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

type AppLogger struct {
	std    *log.Logger
	remote bool
	debug  bool
}

var _ Logger = (*AppLogger)(nil)

func New(std *log.Logger, cfg *config.Config) *AppLogger {
	l := &AppLogger{std: std, debug: cfg.Env == "dev"}
	if cfg.RollbarToken != "" {
		rollbar.SetToken(cfg.RollbarToken)
		rollbar.SetEnvironment(cfg.Env)
		rollbar.SetEnabled(true)
		l.remote = true
	} else {
		rollbar.SetEnabled(false)
	}
	return l
}

// Flush blocks until queued reports are sent.
func (l *AppLogger) Flush() {
	if l.remote {
		rollbar.Wait()
	}
}

func (l *AppLogger) Debug(msg string, kv ...interface{}) {
	if !l.debug {
		return
	}
	l.print("DEBUG", msg, kv)
}

func (l *AppLogger) Info(msg string, kv ...interface{}) {
	l.print("INFO", msg, kv)
}

func (l *AppLogger) Warn(msg string, kv ...interface{}) {
	l.print("WARN", msg, kv)
	if l.remote {
		rollbar.Warning(l.report(msg, kv)...)
	}
}

func (l *AppLogger) Error(msg string, kv ...interface{}) {
	l.print("ERROR", msg, kv)
	if l.remote {
		rollbar.Error(l.report(msg, kv)...)
	}
}

func (l *AppLogger) print(level, msg string, kv []interface{}) {
	l.std.Print(Format(level, msg, kv...))
}

// report converts key/value pairs into rollbar arguments.
func (l *AppLogger) report(msg string, kv []interface{}) []interface{} {
	ctx := context.Background()
	extras := map[string]interface{}{}
	var cause error

	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			extras[key] = nil
			break
		}
		switch v := kv[i+1].(type) {
		case error:
			cause = v
		case *models.User:
			if v != nil {
				ctx = rollbar.NewPersonContext(ctx, &rollbar.Person{
					Id:       strconv.FormatUint(uint64(v.ID), 10),
					Username: v.Name,
					Email:    v.Email,
				})
			}
		default:
			extras[key] = v
		}
	}

	args := []interface{}{ctx, extras}
	if cause != nil {
		return append(args, fmt.Errorf("%s: %w", msg, cause))
	}
	return append(args, msg)
}

// Format renders one log line: LEVEL msg key=value ...
func Format(level, msg string, kv ...interface{}) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteByte('=')
		if i+1 >= len(kv) {
			b.WriteString("<missing>")
			break
		}
		switch v := kv[i+1].(type) {
		case *models.User:
			if v == nil {
				b.WriteString("anonymous")
			} else {
				b.WriteString(strconv.FormatUint(uint64(v.ID), 10))
			}
		case string:
			b.WriteString(strconv.Quote(v))
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// Nop discards everything. Used by tests and tools that don't log.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
