package logger

import (
	"os"
	"path/filepath"
	"testing"

	"kscore-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesOneFilePerLevel(t *testing.T) {
	root := t.TempDir()
	log, err := Init(root, config.LoggingConfig{Directory: "logs", MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	require.NoError(t, err)

	log.Info("phase summarized", zap.String("phase", "baseline"))
	log.Warn("out of order")
	require.NoError(t, log.Sync())

	infoFiles, err := filepath.Glob(filepath.Join(root, "logs", "*-info.log"))
	require.NoError(t, err)
	require.Len(t, infoFiles, 1)
	info, err := os.ReadFile(infoFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(info), `"message":"phase summarized"`)
	assert.NotContains(t, string(info), "out of order")

	warnFiles, err := filepath.Glob(filepath.Join(root, "logs", "*-warn.log"))
	require.NoError(t, err)
	require.Len(t, warnFiles, 1)
	warn, err := os.ReadFile(warnFiles[0])
	require.NoError(t, err)
	assert.Contains(t, string(warn), "out of order")
}
