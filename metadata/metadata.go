package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/7mcool/Vortex-Automator/model"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
	maxHashtags          = 3

	// chapterThresholdMinutes is the duration above which a video gets a
	// manual chapter list and auto-chapters are disabled.
	chapterThresholdMinutes = 5
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

// response is the JSON shape the metadata service is asked to produce.
type response struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	ManualChapters      []string `json:"manualChapters"`
	DisableAutoChapters bool     `json:"disableAutoChapters"`
}

// parseResponse decodes the raw completion text. Models occasionally wrap
// the JSON in a code fence, so fences are stripped first.
func parseResponse(raw string) (response, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var resp response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return response{}, fmt.Errorf("parse metadata response: %w", err)
	}
	if resp.Title == "" {
		return response{}, fmt.Errorf("metadata response has no title")
	}

	return resp, nil
}

// normalize turns a service response into publishable metadata: title
// upper-cased and clamped, hashtags capped, chapter invariant enforced
// against the probed duration.
func normalize(resp response, durationMin float64) model.Metadata {
	md := model.Metadata{
		Title:       clamp(strings.ToUpper(strings.TrimSpace(resp.Title)), maxTitleLength),
		Description: clamp(capHashtags(resp.Description), maxDescriptionLength),
	}

	if durationMin <= chapterThresholdMinutes {
		return md
	}

	for _, line := range resp.ManualChapters {
		if ch, ok := parseChapter(line); ok {
			md.Chapters = append(md.Chapters, ch)
		}
	}
	md.DisableAutoChapters = len(md.Chapters) > 0

	return md
}

// Fallback builds deterministic default metadata from the duration alone,
// used when the metadata service is exhausted or unconfigured.
func Fallback(durationMin float64) model.Metadata {
	md := model.Metadata{
		Title:       "EXCLUSIVE VIDEO",
		Description: "Discover this premium content!\n#youtube #content #viral",
	}

	if durationMin > chapterThresholdMinutes {
		md.Chapters = []model.Chapter{
			{Offset: "00:00", Label: "Introduction"},
			{Offset: fmt.Sprintf("%02d:00", int(durationMin)/2), Label: "Main part"},
			{Offset: fmt.Sprintf("%02d:00", int(durationMin)-1), Label: "Conclusion"},
		}
		md.DisableAutoChapters = true
	}

	return md
}

func parseChapter(line string) (model.Chapter, bool) {
	offset, label, found := strings.Cut(line, " - ")
	if !found {
		return model.Chapter{}, false
	}
	offset = strings.TrimSpace(offset)
	label = strings.TrimSpace(label)
	if offset == "" || label == "" {
		return model.Chapter{}, false
	}
	return model.Chapter{Offset: offset, Label: label}, true
}

// capHashtags keeps at most maxHashtags '#word' tags, dropping the rest.
func capHashtags(desc string) string {
	count := 0
	capped := hashtagPattern.ReplaceAllStringFunc(desc, func(tag string) string {
		count++
		if count > maxHashtags {
			return ""
		}
		return tag
	})
	return strings.TrimRight(capped, " \t")
}

func clamp(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
