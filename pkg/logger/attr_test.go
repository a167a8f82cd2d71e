package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inputguard/pkg/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()

	attr := logger.Group("grp", slog.String("a", "b"))
	assert.Equal(t, "grp", attr.Key)
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
	assert.Len(t, attr.Value.Group(), 1)
}

func TestErrors(t *testing.T) {
	t.Parallel()

	attr := logger.Errors(nil, errors.New("a"), nil, errors.New("b"))
	assert.Equal(t, "errors", attr.Key)
	assert.Len(t, attr.Value.Group(), 2)

	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	attr := logger.Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
}

func TestValidationAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.String("context", "Login name"), logger.Context("Login name"))
	assert.Equal(t, slog.String("rule", "SafeString"), logger.Rule("SafeString"))
	assert.Equal(t, slog.Attr{}, logger.Rule(""))
	assert.Equal(t, slog.String("kind", "date"), logger.Kind("date"))
	assert.Equal(t, slog.String("pattern", "multiple_mixed"), logger.Pattern("multiple_mixed"))
	assert.Equal(t, slog.Attr{}, logger.Codecs(nil))
	assert.Equal(t, "codecs", logger.Codecs([]string{"html", "percent"}).Key)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.RequestID(nil))
	assert.Equal(t, "request_id", logger.RequestID("abc").Key)
}
