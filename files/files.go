package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

// FindVideos lists the video files directly inside dir in lexicographic
// order. Subdirectories are not searched.
func FindVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w", dir, err)
	}

	videos := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(videos)

	return videos, nil
}

// SafeMove moves src into targetDir under name (the source basename when
// name is empty). An existing destination is never overwritten; an
// incrementing numeric suffix is inserted before the extension instead.
func SafeMove(src, targetDir, name string) (string, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create target directory %s: %w", targetDir, err)
	}
	if name == "" {
		name = filepath.Base(src)
	}

	target := filepath.Join(targetDir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(targetDir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
	}

	if err := os.Rename(src, target); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", src, target, err)
	}

	return target, nil
}

// Cleanup deletes regular files in dir older than maxAge. Failures are
// logged and skipped; retention is best effort.
func Cleanup(dir string, maxAge time.Duration, logger *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read directory for cleanup", slog.String("dir", dir), slog.String("error", err.Error()))
		}
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("could not remove old file", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		logger.Info("removed old file", slog.String("path", path))
	}
}
