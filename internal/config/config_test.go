package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
)

var envKeys = []string{
	"APP_CONFIG_PATH",
	"CHAT_SOURCE", "CHAT_AI_NAME", "CHAT_USER_NAME", "CHAT_TITLE", "CHAT_TIMEZONE",
	"CHAT_BASE_DIR", "CHAT_INLINE_OUTPUT", "CHAT_REASONING",
	"CHAT_INPUT_FILE", "CHAT_OUTPUT_FILE", "CHAT_DB_PATH", "CHAT_ARCHIVE",
}

// isolate gives the test an empty home and working directory and unsets
// every variable Load reads. Values loaded from .env are reverted on cleanup.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "aichatmd")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644))
}

func ptr[T any](v T) *T { return &v }

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, "User", cfg.UserName)
	require.Equal(t, "UTC", cfg.Timezone)
	require.Equal(t, ".", cfg.BaseDir)
	require.True(t, cfg.InlineOutput)
	require.False(t, cfg.Reasoning)
	require.True(t, cfg.Archive)
	require.Equal(t, filepath.Join(home, ".config", "aichatmd", "aichatmd.db"), cfg.DBPath)
	require.Empty(t, cfg.Source)
	require.ErrorIs(t, cfg.Validate(true), ErrMissingSource)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `
chat_source = "claude"
user_name = "FileUser"
timezone = "Europe/Paris"
title = "File title"
reasoning = true
base_dir = "~/exports"
`)
	t.Setenv("CHAT_USER_NAME", "EnvUser")
	t.Setenv("CHAT_TIMEZONE", "Asia/Tokyo")

	cfg, err := Load(Overrides{Timezone: ptr("America/New_York")})
	require.NoError(t, err)
	require.Equal(t, parse.SourceClaude, cfg.Source)
	require.Equal(t, "EnvUser", cfg.UserName)
	require.Equal(t, "America/New_York", cfg.Timezone)
	require.Equal(t, "File title", cfg.Title)
	require.True(t, cfg.Reasoning)
	require.Equal(t, filepath.Join(home, "exports"), cfg.BaseDir)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("CHAT_SOURCE=deepseek\nCHAT_TITLE=from dotenv\n"), 0o644))
	t.Setenv("CHAT_TITLE", "from env")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, parse.SourceDeepSeek, cfg.Source)
	require.Equal(t, "from env", cfg.Title)
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(p, []byte(`chat_source = "chatgpt"`), 0o644))

	cfg, err := Load(Overrides{ConfigPath: p})
	require.NoError(t, err)
	require.Equal(t, parse.SourceChatGPT, cfg.Source)

	t.Setenv("APP_CONFIG_PATH", p)
	cfg, err = Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, parse.SourceChatGPT, cfg.Source)
}

func TestLoad_AINameFollowsSource(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		env    map[string]string
		ov     Overrides
		wantAI string
	}{
		{
			name:   "unset uses source default",
			file:   `chat_source = "chatgpt"`,
			wantAI: "ChatGPT",
		},
		{
			name:   "same layer keeps name",
			file:   "chat_source = \"chatgpt\"\nai_name = \"Jarvis\"",
			wantAI: "Jarvis",
		},
		{
			name:   "cli source beats file name",
			file:   "chat_source = \"chatgpt\"\nai_name = \"Jarvis\"",
			ov:     Overrides{ChatSource: ptr("deepseek")},
			wantAI: "DeepSeek",
		},
		{
			name:   "env source beats file name",
			file:   `ai_name = "Jarvis"`,
			env:    map[string]string{"CHAT_SOURCE": "claude"},
			wantAI: "Claude",
		},
		{
			name:   "cli name beats env source",
			env:    map[string]string{"CHAT_SOURCE": "claude"},
			ov:     Overrides{AIName: ptr("Sonnet")},
			wantAI: "Sonnet",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			if tt.file != "" {
				writeConfig(t, home, tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(tt.ov)
			require.NoError(t, err)
			require.Equal(t, tt.wantAI, cfg.AIName)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("CHAT_REASONING", "maybe")
	_, err := Load(Overrides{})
	require.ErrorIs(t, err, ErrInvalidValue)

	isolate(t)
	_, err = Load(Overrides{ChatSource: ptr("gemini")})
	require.ErrorIs(t, err, ErrInvalidValue)
	require.ErrorIs(t, err, parse.ErrUnknownSource)
}

func TestLoad_BadTOML(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `chat_source = `)
	_, err := Load(Overrides{})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Source: parse.SourceClaude}
	require.ErrorIs(t, cfg.Validate(true), ErrMissingInput)
	require.NoError(t, cfg.Validate(false))

	cfg.InputFile = "chat"
	require.NoError(t, cfg.Validate(true))
}

func TestRenderOptions(t *testing.T) {
	cfg := &Config{
		Source:    parse.SourceDeepSeek,
		AIName:    "DS",
		UserName:  "Ann",
		Title:     "T",
		Timezone:  "UTC",
		Reasoning: true,
	}
	opts := cfg.RenderOptions()
	require.Equal(t, parse.SourceDeepSeek, opts.Source)
	require.Equal(t, "DS", opts.AIName)
	require.Equal(t, "Ann", opts.UserName)
	require.Equal(t, "T", opts.Title)
	require.True(t, opts.Reasoning)
	require.Nil(t, opts.Logger)
}
