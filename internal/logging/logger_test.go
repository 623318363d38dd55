package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, GetLevel(" WARN "))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("chatty"))
}

func TestSetupWritesToFile(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	})

	base := filepath.Join(t.TempDir(), "squadload")
	Setup(LoggerSetupParams{
		LogFileName:   base,
		LogLevel:      "debug",
		LogFormatJSON: true,
	})

	logrus.WithField("athlete_id", "a1").Debug("record merged")

	data, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"athlete_id":"a1"`)
	assert.Contains(t, string(data), `"msg":"record merged"`)
}
