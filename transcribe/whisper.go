package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Whisper transcribes media files by shelling out to the whisper CLI. The
// call is blocking; transcription is expected to dominate a video's
// processing time.
type Whisper struct {
	model   string
	tempDir string
}

func NewWhisper(model, tempDir string) *Whisper {
	return &Whisper{model: model, tempDir: tempDir}
}

// Transcribe runs whisper on mediaPath and returns the plain transcript
// text. An empty transcript is returned as-is; judging it is the pipeline's
// job.
func (w *Whisper) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	outDir, err := os.MkdirTemp(w.tempDir, "whisper-")
	if err != nil {
		return "", fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, "whisper", mediaPath,
		"--model", w.model,
		"--output_format", "txt",
		"--output_dir", outDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("whisper failed: %w: %s", err, lastLine(out))
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	transcript, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("read whisper transcript: %w", err)
	}

	return strings.TrimSpace(string(transcript)), nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}
