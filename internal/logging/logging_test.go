package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftdex-engine/internal/config"
)

func TestNewSetsLevel(t *testing.T) {
	log, err := New(config.Log{Level: "debug", Format: "text", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New(config.Log{Level: "shouty", Format: "text", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewJSONFormatter(t *testing.T) {
	log, err := New(config.Log{Level: "info", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(config.Log{Level: "info", Format: "xml", Output: "stdout"})
	require.Error(t, err)
}

func TestNewRejectsUnknownOutput(t *testing.T) {
	_, err := New(config.Log{Level: "info", Format: "text", Output: "syslog"})
	require.Error(t, err)
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "craftdex.log")
	log, err := New(config.Log{Level: "info", Format: "text", Output: "file", FilePath: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Info("hello from the test")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello from the test")
}

func TestTimeBlock(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	done := TimeBlock(log, "extract Bowman")
	done()

	assert.Contains(t, buf.String(), "extract Bowman took")
}
