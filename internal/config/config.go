package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

var (
	ErrMissingSource = errors.New("chat source is required but was not provided")
	ErrMissingInput  = errors.New("input file is required but was not provided")
	ErrInvalidValue  = errors.New("invalid config value")
)

type Config struct {
	ChatSource   string `toml:"chat_source"`
	AIName       string `toml:"ai_name"`
	UserName     string `toml:"user_name"`
	Title        string `toml:"title"`
	Timezone     string `toml:"timezone"`
	BaseDir      string `toml:"base_dir"`
	InlineOutput bool   `toml:"inline_output"`
	Reasoning    bool   `toml:"reasoning"`
	InputFile    string `toml:"input_file"`
	OutputFile   string `toml:"output_file"`
	DBPath       string `toml:"db_path"`
	Archive      bool   `toml:"archive"`

	// Source is ChatSource parsed; empty until a source is configured.
	Source parse.Source `toml:"-"`
}

// Overrides carries command-line values. Nil fields were not given.
type Overrides struct {
	ConfigPath string

	ChatSource   *string
	AIName       *string
	UserName     *string
	Title        *string
	Timezone     *string
	BaseDir      *string
	InlineOutput *bool
	Reasoning    *bool
	InputFile    *string
	OutputFile   *string
	DBPath       *string
	Archive      *bool
}

type layer int

const (
	layerDefault layer = iota
	layerFile
	layerEnv
	layerCLI
)

// Load builds the configuration from defaults, the TOML file, .env and
// CHAT_* variables, then ov. Later layers win.
func Load(ov Overrides) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		UserName:     "User",
		Timezone:     "UTC",
		BaseDir:      ".",
		InlineOutput: true,
		Archive:      true,
		DBPath:       filepath.Join(home, ".config", "aichatmd", "aichatmd.db"),
	}
	sourceAt, nameAt := layerDefault, layerDefault

	cfgPath, explicit := configPath(ov.ConfigPath, home)
	if _, err := os.Stat(cfgPath); err == nil {
		md, err := toml.DecodeFile(cfgPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		if md.IsDefined("chat_source") {
			sourceAt = layerFile
		}
		if md.IsDefined("ai_name") {
			nameAt = layerFile
		}
	} else if explicit {
		fmt.Fprintf(os.Stderr, "WARN: config file %s not found\n", cfgPath)
	}

	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()

	if envString("CHAT_SOURCE", &cfg.ChatSource) {
		sourceAt = layerEnv
	}
	if envString("CHAT_AI_NAME", &cfg.AIName) {
		nameAt = layerEnv
	}
	envString("CHAT_USER_NAME", &cfg.UserName)
	envString("CHAT_TITLE", &cfg.Title)
	envString("CHAT_TIMEZONE", &cfg.Timezone)
	envString("CHAT_BASE_DIR", &cfg.BaseDir)
	envString("CHAT_INPUT_FILE", &cfg.InputFile)
	envString("CHAT_OUTPUT_FILE", &cfg.OutputFile)
	envString("CHAT_DB_PATH", &cfg.DBPath)
	for key, dst := range map[string]*bool{
		"CHAT_INLINE_OUTPUT": &cfg.InlineOutput,
		"CHAT_REASONING":     &cfg.Reasoning,
		"CHAT_ARCHIVE":       &cfg.Archive,
	} {
		if err := envBool(key, dst); err != nil {
			return nil, err
		}
	}

	if ov.ChatSource != nil {
		cfg.ChatSource = *ov.ChatSource
		sourceAt = layerCLI
	}
	if ov.AIName != nil {
		cfg.AIName = *ov.AIName
		nameAt = layerCLI
	}
	setString(&cfg.UserName, ov.UserName)
	setString(&cfg.Title, ov.Title)
	setString(&cfg.Timezone, ov.Timezone)
	setString(&cfg.BaseDir, ov.BaseDir)
	setString(&cfg.InputFile, ov.InputFile)
	setString(&cfg.OutputFile, ov.OutputFile)
	setString(&cfg.DBPath, ov.DBPath)
	setBool(&cfg.InlineOutput, ov.InlineOutput)
	setBool(&cfg.Reasoning, ov.Reasoning)
	setBool(&cfg.Archive, ov.Archive)

	if cfg.ChatSource != "" {
		src, err := parse.ParseSource(cfg.ChatSource)
		if err != nil {
			return nil, fmt.Errorf("%w: chat_source: %w", ErrInvalidValue, err)
		}
		cfg.Source = src
		if cfg.AIName == "" || sourceAt > nameAt {
			cfg.AIName = src.DefaultAIName()
		}
	}

	cfg.BaseDir = expandHome(cfg.BaseDir, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

// Validate checks the settings a conversion needs.
func (c *Config) Validate(needInput bool) error {
	if c.Source == "" {
		return ErrMissingSource
	}
	if needInput && c.InputFile == "" {
		return ErrMissingInput
	}
	return nil
}

// RenderOptions freezes the rendering settings. Logger and Progress are
// left for the caller.
func (c *Config) RenderOptions() transcript.Options {
	return transcript.Options{
		Source:    c.Source,
		Timezone:  c.Timezone,
		Reasoning: c.Reasoning,
		Title:     c.Title,
		UserName:  c.UserName,
		AIName:    c.AIName,
	}
}

func configPath(flag, home string) (string, bool) {
	if flag != "" {
		return expandHome(flag, home), true
	}
	if p := os.Getenv("APP_CONFIG_PATH"); p != "" {
		return expandHome(p, home), true
	}
	return filepath.Join(home, ".config", "aichatmd", "config.toml"), false
}

func envString(key string, dst *string) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	*dst = v
	return true
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	*dst = b
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
