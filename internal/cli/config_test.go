package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sensemap/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, v.GetString(cfgKeyBackend))
	assert.Equal(t, defaultRedisAddr, v.GetString(cfgKeyRedisAddr))
	assert.Equal(t, defaultLogLevel, v.GetString(cfgKeyLogLevel))
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "backend: redis\nredis:\n  addr: cache:6380\n  db: 3\n  prefix: \"test:\"\nlog:\n  level: info\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	v, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendRedis, v.GetString(cfgKeyBackend))
	assert.Equal(t, "cache:6380", v.GetString(cfgKeyRedisAddr))
	assert.Equal(t, 3, v.GetInt(cfgKeyRedisDB))
	assert.Equal(t, "test:", v.GetString(cfgKeyRedisPrefix))
	assert.Equal(t, "info", v.GetString(cfgKeyLogLevel))

	t.Setenv("SENSEMAP_REDIS_ADDR", "other:6379")
	v, err = loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "other:6379", v.GetString(cfgKeyRedisAddr))
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [unclosed"), 0o644))

	_, err := loadConfig(dir)
	assert.Error(t, err)
}

func TestWriteConfigIfMissing(t *testing.T) {
	dir := t.TempDir()
	path := configPath(dir)

	written, err := writeConfigIfMissing(path, "/var/lib/sensemap")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "/var/lib/sensemap", dataDirFromConfig(dir))

	v, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, v.GetString(cfgKeyBackend))

	written, err = writeConfigIfMissing(path, "/elsewhere")
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, "/var/lib/sensemap", dataDirFromConfig(dir))
}

func TestDataDirFromConfigMissing(t *testing.T) {
	assert.Empty(t, dataDirFromConfig(t.TempDir()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info")
	log.Debug("hidden")
	log.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown k=v")
}

func TestWriteText(t *testing.T) {
	box, err := types.NewBoxScope("box-1")
	require.NoError(t, err)

	var buf bytes.Buffer
	writeText(&buf, box, []renderedObject{
		{ObjectID: "o1", Type: types.ObjectTypeCard, X: 1, Y: 2, Selected: true, Title: "Alpha", CardType: types.CardTypeNote, Tags: []string{"x"}},
		{ObjectID: "o2", Type: types.ObjectTypeBox, X: 3, Y: 4, Title: "Group", Ref: "box-2", Members: []types.ObjectID{"o1"}, Openable: true},
		{ObjectID: "o3", Type: types.ObjectTypeCard, Ref: "card-9", Missing: true},
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "scope BOX(box-1), 3 objects", string(lines[0]))
	assert.Equal(t, `* CARD  o1  (1, 2)  "Alpha"  [NOTE] #x`, string(lines[1]))
	assert.Equal(t, `  BOX   o2  (3, 4)  "Group"  1 items  (open-box box-2)`, string(lines[2]))
	assert.Equal(t, "  CARD  o3  (0, 0)  <missing card-9>", string(lines[3]))
}
