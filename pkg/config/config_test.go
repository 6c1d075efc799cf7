package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeSettings(t, `
version: 1
display:
  tick_interval: 20s
  dark_hours: "Mon-Thu 19:00-07:00"
paths:
  config: /var/lib/desk-display/schedule.json
  state: /var/lib/desk-display/state.json
store:
  retention: 10
admin:
  port: 8080
maintenance:
  schedule: "30 2 * * *"
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, settings.TickInterval())
	assert.Equal(t, "Mon-Thu 19:00-07:00", settings.Display.DarkHours)
	assert.Equal(t, "/var/lib/desk-display/schedule.json", settings.Paths.Config)
	assert.Equal(t, 10, settings.Store.Retention)
	assert.Equal(t, 8080, settings.AdminPort())
	assert.Equal(t, "30 2 * * *", settings.MaintenanceSchedule())
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	path := writeSettings(t, "version: 9\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported settings version")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	settings := Default()

	assert.Equal(t, 12*time.Second, settings.TickInterval())
	assert.Equal(t, 5001, settings.AdminPort())
	assert.Equal(t, "0 3 * * *", settings.MaintenanceSchedule())
}
