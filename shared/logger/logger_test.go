package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWithServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("todo", "debug", &buf)

	WithRequestID(l, "req-1").WithField("task_id", "t1").Info("task created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "todo", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "t1", line["task_id"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "task created", line["message"])
	assert.Contains(t, line, "ts")
}

func TestLevelParsing(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, logrus.WarnLevel, NewWithOutput("todo", "warn", &buf).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput("todo", "", &buf).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput("todo", "loud", &buf).GetLevel())
}

func TestWithRequestIDEmpty(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("todo", "info", &buf)

	WithRequestID(l, "").Info("no id")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "request_id")
}
