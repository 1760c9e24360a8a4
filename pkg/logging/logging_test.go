package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, Configure(l, "warn", "json", &buf))

	l.Info("dropped")
	l.WithField("org", "acme").Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "acme", entry["org"])
	assert.Equal(t, "warning", entry["level"])
}

func TestConfigureText(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, Configure(l, "debug", "text", &buf))

	l.Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestConfigureErrors(t *testing.T) {
	l := logrus.New()
	assert.Error(t, Configure(l, "loud", "text", &bytes.Buffer{}))
	assert.Error(t, Configure(l, "info", "xml", &bytes.Buffer{}))
}
