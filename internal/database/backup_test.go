package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackupCopiesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "wordpair.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("db contents"), 0o644))

	backupDir := filepath.Join(dir, "backups")
	logger := zerolog.Nop()
	svc := NewBackupService(dbPath, BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	files, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(filepath.Join(backupDir, files[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "db contents", string(data))
}

func TestCleanupOldBackups(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "backup_old.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, past, past))

	fresh := filepath.Join(dir, "backup_fresh.db")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	logger := zerolog.Nop()
	svc := NewBackupService("unused.db", BackupConfig{
		Enabled:       true,
		StoragePath:   dir,
		RetentionDays: 7,
	}, &logger)

	svc.CleanupOldBackups()

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
