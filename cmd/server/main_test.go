package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/poinku/internal/conversion"
	"github.com/mmynk/poinku/internal/storage/sqldb"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := Version, BuildTime, GitCommit
	defer func() {
		Version, BuildTime, GitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	Version = "1.2.3"
	BuildTime = "2026-01-01"
	GitCommit = "abcdef"

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Poinku 1.2.3")
	assert.Contains(t, out, "Built: 2026-01-01")
	assert.Contains(t, out, "Commit: abcdef")

	GitCommit = "unknown"
	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.NotContains(t, out, "Commit:")
}

func TestAdminCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("POINKU_DEV", "true")
	t.Setenv("POINKU_DB_DSN", dbPath)
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, "migrate")
	require.NoError(t, err)

	out, err := execute(t, "set-divisor", "10000")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversion divisor set to 10000")

	_, err = execute(t, "set-divisor", "ten")
	assert.Error(t, err)

	_, err = execute(t, "set-divisor", "0")
	assert.Error(t, err)

	out, err = execute(t, "create-staff", "--username", "Owner", "--password", "owner-pass", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Created admin owner")

	_, err = execute(t, "create-staff", "--username", "boss", "--password", "boss-pass", "--role", "owner")
	assert.Error(t, err)

	_, err = execute(t, "create-staff", "--username", "nopass")
	assert.Error(t, err, "password flag is required")

	db, err := sqldb.NewSQLite(dbPath)
	require.NoError(t, err)
	defer db.Close()

	divisor, err := conversion.NewPolicy(db, 0).Divisor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), divisor)
}
