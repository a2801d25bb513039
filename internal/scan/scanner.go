package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// Exts are the extensions treated as chat exports when walking a directory.
var Exts = []string{".json", ".txt"}

// Scan expands paths into export files. Regular files are taken as given;
// directories are walked for files with one of Exts. The result is sorted
// by path and free of duplicates.
func Scan(paths []string) ([]FileInfo, error) {
	seen := make(map[string]bool)
	var files []FileInfo
	add := func(path string, info os.FileInfo) {
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root, info)
			continue
		}
		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // skip unreadable dirs
			}
			if info.IsDir() {
				if path != root && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !isExport(path) {
				return nil
			}
			add(path, info)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isExport(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Sniff guesses the platform an export came from by its top-level shape.
// It returns "" when the document matches none of them.
func Sniff(data []byte) parse.Source {
	if !gjson.ValidBytes(data) {
		return ""
	}
	doc := gjson.ParseBytes(data)
	switch {
	case doc.Get("data.biz_data.chat_session").IsObject():
		return parse.SourceDeepSeek
	case doc.Get("mapping").IsObject() && doc.Get("current_node").Exists():
		return parse.SourceChatGPT
	case doc.Get("chat_messages").IsArray():
		return parse.SourceClaude
	}
	return ""
}

// Matches reports whether data may be an export of want. Documents Sniff
// cannot place are given the benefit of the doubt.
func Matches(data []byte, want parse.Source) bool {
	got := Sniff(data)
	return got == "" || got == want
}
