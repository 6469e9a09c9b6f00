// Package config loads and validates the proc-receive hook configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/procreceive/internal/logging"
	"github.com/danmuck/procreceive/internal/pullid"
	"github.com/danmuck/procreceive/internal/refs"
)

const (
	EnvConfig    = "PROC_RECEIVE_CONFIG"
	EnvGitDir    = "GIT_DIR"
	FileName     = "proc-receive.toml"
	DefaultLog   = "logs/proc-receive.log"
	DefaultGit   = "git"
	DefaultLevel = "info"
)

var ErrMissingEnvironment = errors.New("config: missing environment variable")

// HookConfig is the proc-receive hook configuration.
type HookConfig struct {
	GitDir          string `toml:"git_dir"`
	CounterPath     string `toml:"counter_path"`
	RefNamespace    string `toml:"ref_namespace"`
	BaseBranch      string `toml:"base_branch"`
	BaseOption      string `toml:"base_option"`
	GitBinary       string `toml:"git_binary"`
	LogFile         string `toml:"log_file"`
	LogLevel        string `toml:"log_level"`
	LogEnv          bool   `toml:"log_env"`
	LogArgs         bool   `toml:"log_args"`
	MetricsTextfile string `toml:"metrics_textfile"`
}

// Default returns the built-in configuration. GitDir and LogFile are left
// empty and resolved from the environment at run time.
func Default() HookConfig {
	return HookConfig{
		CounterPath:  pullid.DefaultPath,
		RefNamespace: refs.DefaultNamespace,
		BaseBranch:   refs.DefaultBaseBranch,
		BaseOption:   "base",
		GitBinary:    DefaultGit,
		LogLevel:     DefaultLevel,
	}
}

// Locate picks the config file: the explicit path, then $PROC_RECEIVE_CONFIG,
// then <gitDir>/proc-receive.toml if it exists. It returns "" when there is
// no config file and defaults apply.
func Locate(explicit, gitDir string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p
	}
	candidate := filepath.Join(ResolveGitDir(gitDir), FileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Load overlays the keys defined in path onto Default and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (HookConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, Validate(cfg)
	}

	var raw HookConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return HookConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return HookConfig{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("git_dir") {
		cfg.GitDir = strings.TrimSpace(raw.GitDir)
	}
	if meta.IsDefined("counter_path") {
		cfg.CounterPath = strings.TrimSpace(raw.CounterPath)
	}
	if meta.IsDefined("ref_namespace") {
		cfg.RefNamespace = strings.TrimSpace(raw.RefNamespace)
	}
	if meta.IsDefined("base_branch") {
		cfg.BaseBranch = strings.TrimSpace(raw.BaseBranch)
	}
	if meta.IsDefined("base_option") {
		cfg.BaseOption = strings.TrimSpace(raw.BaseOption)
	}
	if meta.IsDefined("git_binary") {
		cfg.GitBinary = strings.TrimSpace(raw.GitBinary)
	}
	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_env") {
		cfg.LogEnv = raw.LogEnv
	}
	if meta.IsDefined("log_args") {
		cfg.LogArgs = raw.LogArgs
	}
	if meta.IsDefined("metrics_textfile") {
		cfg.MetricsTextfile = strings.TrimSpace(raw.MetricsTextfile)
	}

	if err := Validate(cfg); err != nil {
		return HookConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg HookConfig) error {
	if strings.TrimSpace(cfg.CounterPath) == "" {
		return fmt.Errorf("counter_path is required")
	}
	if err := refs.ValidateNamespace(cfg.RefNamespace); err != nil {
		return fmt.Errorf("ref_namespace: %w", err)
	}
	if err := refs.ValidateBranch(cfg.BaseBranch); err != nil {
		return fmt.Errorf("base_branch: %w", err)
	}
	if cfg.BaseOption == "" || strings.Contains(cfg.BaseOption, "=") {
		return fmt.Errorf("base_option must be a non-empty key without '='")
	}
	if strings.TrimSpace(cfg.GitBinary) == "" {
		return fmt.Errorf("git_binary is required")
	}
	if cfg.LogLevel != "" {
		if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("log_level %q is not a known level", cfg.LogLevel)
		}
	}
	return nil
}

// ResolveGitDir returns dir, else $GIT_DIR, else ".". git runs hooks with
// the repository control directory as the working directory.
func ResolveGitDir(dir string) string {
	if dir != "" {
		return dir
	}
	if env := os.Getenv(EnvGitDir); env != "" {
		return env
	}
	return "."
}

// CounterFile returns the absolute-or-gitdir-relative pull id counter path.
func (c HookConfig) CounterFile() string {
	if filepath.IsAbs(c.CounterPath) {
		return c.CounterPath
	}
	return filepath.Join(ResolveGitDir(c.GitDir), c.CounterPath)
}

// LogFilePath returns the log file path, expanding a leading ~/. Without a
// configured path it defaults to $HOME/logs/proc-receive.log and fails with
// ErrMissingEnvironment when HOME is unset.
func (c HookConfig) LogFilePath() (string, error) {
	if c.LogFile != "" && !strings.HasPrefix(c.LogFile, "~/") {
		return c.LogFile, nil
	}
	home, ok := os.LookupEnv("HOME")
	if !ok || home == "" {
		return "", fmt.Errorf("%w: HOME", ErrMissingEnvironment)
	}
	if c.LogFile == "" {
		return filepath.Join(home, DefaultLog), nil
	}
	return filepath.Join(home, c.LogFile[2:]), nil
}
