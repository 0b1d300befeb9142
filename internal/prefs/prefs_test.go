package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	require.Equal(t, Prefs{}, p)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)
	want := Prefs{EnabledAgents: []string{"budget", "alerts"}, DebtStrategy: "snowball", SessionID: "abc"}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("enabled_agents = ["), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
