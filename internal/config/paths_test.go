package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, p string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
}

func TestResolvePaths_InputExtensionInference(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "chats", "a.json"))
	touch(t, filepath.Join(base, "chats", "b.txt"))
	touch(t, filepath.Join(base, "chats", "c.export"))
	touch(t, filepath.Join(base, "chats", "both.json"))
	touch(t, filepath.Join(base, "chats", "both.txt"))

	tests := []struct {
		input string
		want  string
	}{
		{"chats/a", "chats/a.json"},
		{"chats/b", "chats/b.txt"},
		{"chats/c.export", "chats/c.export"},
		{"chats/both", "chats/both.json"},
		{"chats/a.md", "chats/a.json"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := &Config{BaseDir: base, InputFile: tt.input, InlineOutput: true}
			p, err := cfg.ResolvePaths()
			require.NoError(t, err)
			require.Equal(t, filepath.Join(base, tt.want), p.Input)
		})
	}
}

func TestResolvePaths_InputNotFound(t *testing.T) {
	cfg := &Config{BaseDir: t.TempDir(), InputFile: "missing"}
	_, err := cfg.ResolvePaths()
	require.ErrorIs(t, err, ErrInputNotFound)
}

func TestResolvePaths_BaseDirNotFound(t *testing.T) {
	cfg := &Config{BaseDir: filepath.Join(t.TempDir(), "nope"), InputFile: "a"}
	_, err := cfg.ResolvePaths()
	require.ErrorIs(t, err, ErrBaseDirNotFound)
}

func TestResolvePaths_Output(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "in", "chat.json"))

	tests := []struct {
		name   string
		inline bool
		output string
		want   string
	}{
		{"inline default", true, "", "in/chat.md"},
		{"inline named", true, "out/notes", "in/notes.md"},
		{"inline keeps ext", true, "notes.markdown", "in/notes.markdown"},
		{"base default", false, "", "in/chat.md"},
		{"base named", false, "out/notes", "out/notes.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BaseDir: base, InputFile: "in/chat", OutputFile: tt.output, InlineOutput: tt.inline}
			p, err := cfg.ResolvePaths()
			require.NoError(t, err)
			require.Equal(t, filepath.Join(base, tt.want), p.Output)
		})
	}
}

func TestResolvePaths_AbsoluteInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chat.json")
	touch(t, in)

	cfg := &Config{BaseDir: t.TempDir(), InputFile: in, InlineOutput: true}
	p, err := cfg.ResolvePaths()
	require.NoError(t, err)
	require.Equal(t, in, p.Input)
	require.Equal(t, filepath.Join(dir, "chat.md"), p.Output)
}

func TestOutputFor(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{BaseDir: base, OutputFile: "ignored", InlineOutput: false}
	out, err := cfg.OutputFor(filepath.Join(base, "x", "y.json"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "x", "y.md"), out)
}
