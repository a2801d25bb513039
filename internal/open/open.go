package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/aichatmd/internal/index"
)

// Transcript opens the Markdown output of an archived transcript in
// $EDITOR, positioned at the header of hitBlockID when it is >= 0.
func Transcript(db *index.DB, key string, hitBlockID int) error {
	t, err := db.GetTranscriptByKey(key)
	if err != nil {
		return fmt.Errorf("get transcript: %w", err)
	}
	if t == nil {
		return fmt.Errorf("transcript not found: %s", key)
	}

	if _, err := os.Stat(t.OutputPath); err != nil {
		return fmt.Errorf("file not found: %s", t.OutputPath)
	}

	lineNum := 1
	if hitBlockID >= 0 {
		blocks, err := db.GetBlocks(key)
		if err == nil {
			for _, b := range blocks {
				if b.BlockID == hitBlockID {
					lineNum = b.LineNumber
					break
				}
			}
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := exec.Command(editor, editorArgs(editor, t.OutputPath, lineNum)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// editorArgs builds the jump-to-line arguments the common editors accept.
func editorArgs(editor, filePath string, lineNum int) []string {
	switch {
	case strings.Contains(editor, "vim"), strings.Contains(editor, "less"),
		strings.Contains(editor, "nano"), strings.Contains(editor, "emacs"):
		return []string{"+" + strconv.Itoa(lineNum), filePath}
	case strings.Contains(editor, "code"):
		return []string{"--goto", filePath + ":" + strconv.Itoa(lineNum)}
	default:
		return []string{filePath}
	}
}
