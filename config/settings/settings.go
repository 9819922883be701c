// Package settings resolves CLI settings from the profiles file, FLOWOPS_*
// environment variables and command line flags.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kompox/flowops/internal/logging"
)

// Environment variables and file names.
const (
	HomeEnv          = "FLOWOPS_HOME"
	ProfileEnv       = "FLOWOPS_PROFILE"
	EnvPrefix        = "FLOWOPS"
	HomeDirName      = ".flowops"
	ProfilesFileName = "profiles.yml"
	DefaultProfile   = "default"
)

// Setting keys. Flags with the same name, dashes for underscores, override them.
const (
	KeyDBURL            = "db_url"
	KeyAPIURL           = "api_url"
	KeyAPIDNSName       = "api_dns_name"
	KeyWorkspace        = "workspace"
	KeyLogFormat        = "log_format"
	KeyLogLevel         = "log_level"
	KeyLogOutput        = "log_output"
	KeyLogDir           = "log_dir"
	KeyLogRetentionDays = "log_retention_days"
	KeyKubeconfig       = "kubeconfig"
	KeyServerAddr       = "server_addr"
)

// Keys lists every setting key.
var Keys = []string{
	KeyDBURL, KeyAPIURL, KeyAPIDNSName, KeyWorkspace, KeyLogFormat, KeyLogLevel,
	KeyLogOutput, KeyLogDir, KeyLogRetentionDays, KeyKubeconfig, KeyServerAddr,
}

// Settings are the resolved values of the active profile.
type Settings struct {
	Home             string `json:"home"`
	Profile          string `json:"profile"`
	DBURL            string `json:"db_url"`
	APIURL           string `json:"api_url"`
	APIDNSName       string `json:"api_dns_name,omitempty"`
	Workspace        string `json:"workspace"`
	LogFormat        string `json:"log_format"`
	LogLevel         string `json:"log_level"`
	LogOutput        string `json:"log_output"`
	LogDir           string `json:"log_dir"`
	LogRetentionDays int    `json:"log_retention_days"`
	Kubeconfig       string `json:"kubeconfig,omitempty"`
	ServerAddr       string `json:"server_addr"`
}

// File is the profiles file.
type File struct {
	Active   string                    `yaml:"active,omitempty"`
	Profiles map[string]map[string]any `yaml:"profiles,omitempty"`
}

// LogConfig returns the log settings.
func (s *Settings) LogConfig() *logging.LogConfig {
	return &logging.LogConfig{
		Format:        s.LogFormat,
		Level:         s.LogLevel,
		Output:        s.LogOutput,
		Dir:           s.LogDir,
		RetentionDays: s.LogRetentionDays,
	}
}

// Home returns $FLOWOPS_HOME or ~/.flowops.
func Home() string {
	if v, ok := os.LookupEnv(HomeEnv); ok && v != "" {
		return v
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return HomeDirName
	}
	return filepath.Join(h, HomeDirName)
}

func defaults(v *viper.Viper, home string) {
	v.SetDefault(KeyDBURL, "sqlite:"+filepath.Join(home, "flowops.db"))
	v.SetDefault(KeyAPIURL, "http://127.0.0.1:4200/api")
	v.SetDefault(KeyWorkspace, "default")
	v.SetDefault(KeyLogFormat, "human")
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogOutput, "-")
	v.SetDefault(KeyLogDir, filepath.Join(home, "logs"))
	v.SetDefault(KeyLogRetentionDays, 7)
	v.SetDefault(KeyServerAddr, "127.0.0.1:4200")
}

// Load resolves settings. The profile is picked from the profile argument,
// then $FLOWOPS_PROFILE, then the file's active profile, then "default".
// flags may be nil; only flags that were set override other sources.
func Load(fs afero.Fs, home, profile string, flags *pflag.FlagSet) (*Settings, error) {
	f, err := ReadFile(fs, home)
	if err != nil {
		return nil, err
	}
	if profile == "" {
		profile = os.Getenv(ProfileEnv)
	}
	if profile == "" {
		profile = f.Active
	}
	if profile == "" {
		profile = DefaultProfile
	}
	values, ok := f.Profiles[profile]
	if !ok && profile != DefaultProfile {
		return nil, fmt.Errorf("profile %q not found in %s", profile, filepath.Join(home, ProfilesFileName))
	}

	v := viper.New()
	defaults(v, home)
	if err := v.MergeConfigMap(values); err != nil {
		return nil, fmt.Errorf("profile %q: %w", profile, err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if flags != nil {
		for _, key := range Keys {
			if fl := flags.Lookup(strings.ReplaceAll(key, "_", "-")); fl != nil {
				if err := v.BindPFlag(key, fl); err != nil {
					return nil, err
				}
			}
		}
	}
	return &Settings{
		Home:             home,
		Profile:          profile,
		DBURL:            v.GetString(KeyDBURL),
		APIURL:           v.GetString(KeyAPIURL),
		APIDNSName:       v.GetString(KeyAPIDNSName),
		Workspace:        v.GetString(KeyWorkspace),
		LogFormat:        v.GetString(KeyLogFormat),
		LogLevel:         v.GetString(KeyLogLevel),
		LogOutput:        v.GetString(KeyLogOutput),
		LogDir:           v.GetString(KeyLogDir),
		LogRetentionDays: v.GetInt(KeyLogRetentionDays),
		Kubeconfig:       v.GetString(KeyKubeconfig),
		ServerAddr:       v.GetString(KeyServerAddr),
	}, nil
}

// ReadFile reads the profiles file of home. A missing file is empty.
func ReadFile(fs afero.Fs, home string) (*File, error) {
	path := filepath.Join(home, ProfilesFileName)
	b, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{Profiles: map[string]map[string]any{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]map[string]any{}
	}
	return &f, nil
}

// WriteFile stores the profiles file of home.
func WriteFile(fs afero.Fs, home string, f *File) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(home, 0o700); err != nil {
		return err
	}
	return afero.WriteFile(fs, filepath.Join(home, ProfilesFileName), b, 0o600)
}

// Set stores key=value in a profile, creating it when needed.
func Set(fs afero.Fs, home, profile, key, value string) error {
	if !isKey(key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	f, err := ReadFile(fs, home)
	if err != nil {
		return err
	}
	if f.Profiles[profile] == nil {
		f.Profiles[profile] = map[string]any{}
	}
	f.Profiles[profile][key] = value
	return WriteFile(fs, home, f)
}

// Use makes profile the active profile.
func Use(fs afero.Fs, home, profile string) error {
	f, err := ReadFile(fs, home)
	if err != nil {
		return err
	}
	if _, ok := f.Profiles[profile]; !ok && profile != DefaultProfile {
		return fmt.Errorf("profile %q not found", profile)
	}
	f.Active = profile
	return WriteFile(fs, home, f)
}

// Names returns the profile names, sorted.
func (f *File) Names() []string {
	out := make([]string, 0, len(f.Profiles))
	for k := range f.Profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func isKey(k string) bool {
	for _, key := range Keys {
		if key == k {
			return true
		}
	}
	return false
}
