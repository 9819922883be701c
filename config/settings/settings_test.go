package settings

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ProfileEnv, "")
	fs := afero.NewMemMapFs()
	s, err := Load(fs, "/h", "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, s.Profile)
	assert.Equal(t, "sqlite:/h/flowops.db", s.DBURL)
	assert.Equal(t, "human", s.LogFormat)
	assert.Equal(t, 7, s.LogRetentionDays)

	_, err = Load(fs, "/h", "missing", nil)
	assert.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv(ProfileEnv, "")
	fs := afero.NewMemMapFs()
	require.NoError(t, Set(fs, "/h", "prod", KeyDBURL, "sqlite:/data/prod.db"))
	require.NoError(t, Set(fs, "/h", "prod", KeyWorkspace, "analytics"))
	require.NoError(t, Set(fs, "/h", "prod", KeyLogFormat, "json"))
	require.NoError(t, Use(fs, "/h", "prod"))
	assert.Error(t, Set(fs, "/h", "prod", "colour", "blue"))

	t.Setenv("FLOWOPS_WORKSPACE", "from-env")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db-url", "", "")
	flags.String("log-format", "human", "")
	require.NoError(t, flags.Parse([]string{"--db-url", "memory:"}))

	s, err := Load(fs, "/h", "", flags)
	require.NoError(t, err)
	assert.Equal(t, "prod", s.Profile)
	assert.Equal(t, "memory:", s.DBURL, "changed flag wins")
	assert.Equal(t, "from-env", s.Workspace, "env beats the profile")
	assert.Equal(t, "json", s.LogFormat, "unchanged flag keeps the profile value")

	f, err := ReadFile(fs, "/h")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod"}, f.Names())
}

func TestLogConfig(t *testing.T) {
	t.Setenv(ProfileEnv, "")
	fs := afero.NewMemMapFs()
	require.NoError(t, Set(fs, "/h", "default", KeyLogOutput, "auto"))
	s, err := Load(fs, "/h", "", nil)
	require.NoError(t, err)
	cfg := s.LogConfig()
	assert.Equal(t, "auto", cfg.Output)
	assert.Equal(t, "/h/logs", cfg.Dir)
	assert.Equal(t, "INFO", cfg.Level)
}
