package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggersWritesJSONFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	t.Cleanup(func() {
		ErrorLogger, AuditLogger, RequestLogger = zap.NewNop(), zap.NewNop(), zap.NewNop()
		SecurityLogger, SystemLogger = zap.NewNop(), zap.NewNop()
	})

	require.NoError(t, InitLoggers(dir, false))

	AuditLogger.Info("user registered", zap.Int("user_id", 7))
	SecurityLogger.Info("below warn level, dropped")
	SyncLoggers()

	raw, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "user registered", entry["msg"])
	assert.Equal(t, float64(7), entry["user_id"])
	assert.Contains(t, entry, "timestamp")

	security, err := os.ReadFile(filepath.Join(dir, "security.log"))
	require.NoError(t, err)
	assert.Empty(t, security)
}
