package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrBaseDirNotFound = errors.New("base directory does not exist")
	ErrInputNotFound   = errors.New("could not find input file")
)

// Paths are the resolved files of one conversion.
type Paths struct {
	BaseDir string
	Input   string
	Output  string
}

// ResolvePaths locates the configured input under BaseDir and derives the
// output path.
func (c *Config) ResolvePaths() (Paths, error) {
	base, err := c.baseDir()
	if err != nil {
		return Paths{}, err
	}
	in, err := resolveInput(base, c.InputFile)
	if err != nil {
		return Paths{}, err
	}
	out, err := resolveOutput(base, c.OutputFile, in, c.InlineOutput)
	if err != nil {
		return Paths{}, err
	}
	return Paths{BaseDir: base, Input: in, Output: out}, nil
}

// OutputFor derives the output path for an input found by a directory
// walk. An explicit output file name is ignored in that case.
func (c *Config) OutputFor(input string) (string, error) {
	base, err := c.baseDir()
	if err != nil {
		return "", err
	}
	return resolveOutput(base, "", input, c.InlineOutput)
}

func (c *Config) baseDir() (string, error) {
	base := c.BaseDir
	if base == "" {
		base = "."
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrBaseDirNotFound, base)
	}
	return base, nil
}

func under(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// resolveInput tries the name as given, then with .json, then with .txt.
func resolveInput(base, name string) (string, error) {
	if name == "" {
		return "", ErrMissingInput
	}
	full := under(base, name)
	if filepath.Ext(full) != "" && fileExists(full) {
		return full, nil
	}
	stem := strings.TrimSuffix(full, filepath.Ext(full))
	jsonPath, txtPath := stem+".json", stem+".txt"
	for _, p := range []string{jsonPath, txtPath} {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s and %s", ErrInputNotFound, jsonPath, txtPath)
}

func resolveOutput(base, name, input string, inline bool) (string, error) {
	if name != "" {
		if inline {
			name = filepath.Join(filepath.Dir(input), filepath.Base(name))
		} else {
			name = under(base, name)
		}
		if filepath.Ext(name) == "" {
			name += ".md"
		}
		return name, nil
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if stem == "" {
		return "", fmt.Errorf("input path %q has no file stem", input)
	}
	if inline {
		return filepath.Join(filepath.Dir(input), stem+".md"), nil
	}
	rel, err := filepath.Rel(base, filepath.Dir(input))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = "."
	}
	return filepath.Join(base, rel, stem+".md"), nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
