package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, DefaultSubjects, cfg.Attendance.Subjects)
	assert.Equal(t, 10, cfg.Attendance.MaxLectures)
	assert.Equal(t, "1/2/2006", cfg.Reports.DateLabelLayout)
	assert.Equal(t, 5*time.Minute, cfg.Reports.CacheTTL)
}

func TestLoadSubjectsFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SUBJECTS", "Physics, Chemistry ,,Biology")
	t.Setenv("MAX_LECTURES", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics", "Chemistry", "Biology"}, cfg.Attendance.Subjects)
	assert.Equal(t, 8, cfg.Attendance.MaxLectures)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("bogus", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
