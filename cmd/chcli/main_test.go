package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhouse/certhouse/storage/model"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	data := `
storage:
  data_dir: ` + dir + `
artifacts:
  dir: ` + filepath.Join(dir, "certs") + `
api:
  jwt_secret: 0123456789abcdef0123456789abcdef
  password_hashing:
    time: 1
    memory_kib: 8192
    parallelism: 1
    key_len: 32
    salt_len: 16
`
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestUsersCreate(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "-c", cfg, "users", "create", "coach", "--password", "pw", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin user 'coach'")

	u, err := store.UsersStorage().Authenticate("coach", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	_, err = run(t, "-c", cfg, "users", "create", "coach", "--password", "pw", "--role", "admin")
	assert.Error(t, err)
	_, err = run(t, "-c", cfg, "users", "create", "other", "--password", "pw", "--role", "root")
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "-c", cfg, "provision", "--training", "1", "--participants", "1")
	require.Error(t, err)

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	tr, err := store.TrainingsStorage().Create(
		model.AddTraining{
			Name:          "Ladder Safety",
			StartsAt:      start,
			EndsAt:        start.Add(time.Hour),
			CategoryCodes: []string{"LS-1"},
		},
	)
	require.NoError(t, err)
	p, err := store.ParticipantsStorage().Create(model.AddParticipant{FirstName: "Kim"})
	require.NoError(t, err)
	e, err := store.EnrollmentsStorage().Create(tr.ID, model.AddEnrollment{ParticipantID: p.ID})
	require.NoError(t, err)
	_, err = store.EnrollmentsStorage().UpdateStatus(e.ID, model.StatusCompleted, "cli")
	require.NoError(t, err)

	out, err := run(t, "-c", cfg, "publish", "--training", "1", "--participants", "1,2")
	require.NoError(t, err)
	assert.Contains(t, out, `"license_number": "CERT-T1-P1-`)
	assert.Contains(t, out, `"participant_id": 2`)
	image := firstImage(t, filepath.Join(filepath.Dir(cfg), "certs"))
	assert.True(t, strings.HasPrefix(image, "CERT-T1-P1-"), image)
	assert.True(t, strings.HasSuffix(image, ".png"), image)
}

func firstImage(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0].Name()
}
