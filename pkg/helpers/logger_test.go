package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, logrus.DebugLevel, newLogger(&buf, "crm", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, newLogger(&buf, "crm", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, newLogger(&buf, "crm", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, newLogger(&buf, "crm", "production", "loud").GetLevel())
}

func TestLogErrorWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "crm", "production", "")
	buf.Reset()

	LogError(logger, "request failed", errors.New("boom"), logrus.Fields{"op": "create_account"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "create_account", entry["op"])
	assert.Equal(t, "error", entry["level"])
}
