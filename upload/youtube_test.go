package upload

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/7mcool/Vortex-Automator/model"
	"google.golang.org/api/googleapi"
)

func TestBuildDescriptionWithoutChapters(t *testing.T) {
	md := model.Metadata{Description: "plain"}
	if got := buildDescription(md); got != "plain" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildDescriptionAppendsChapters(t *testing.T) {
	md := model.Metadata{
		Description: "plain",
		Chapters: []model.Chapter{
			{Offset: "00:00", Label: "Intro"},
			{Offset: "06:00", Label: "Deep dive"},
		},
	}

	got := buildDescription(md)
	if !strings.Contains(got, "Chapters:") {
		t.Fatalf("chapter header missing in %q", got)
	}
	if !strings.Contains(got, "00:00 - Intro") || !strings.Contains(got, "06:00 - Deep dive") {
		t.Fatalf("chapter lines missing in %q", got)
	}
}

func TestBuildDescriptionCapsChapterLines(t *testing.T) {
	md := model.Metadata{Description: "plain"}
	for i := 0; i < maxChapterLines+10; i++ {
		md.Chapters = append(md.Chapters, model.Chapter{
			Offset: fmt.Sprintf("%02d:00", i),
			Label:  fmt.Sprintf("Chapter %d", i),
		})
	}

	got := buildDescription(md)
	if lines := strings.Count(got, " - Chapter "); lines != maxChapterLines {
		t.Fatalf("expected %d chapter lines, got %d", maxChapterLines, lines)
	}
}

func TestIsQuotaExceeded(t *testing.T) {
	quota := &googleapi.Error{
		Code:   403,
		Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}},
	}
	if !isQuotaExceeded(fmt.Errorf("insert: %w", quota)) {
		t.Fatal("quotaExceeded reason must be detected through wrapping")
	}

	forbidden := &googleapi.Error{
		Code:   403,
		Errors: []googleapi.ErrorItem{{Reason: "forbidden"}},
	}
	if isQuotaExceeded(forbidden) {
		t.Fatal("other API errors must not count as quota")
	}
	if isQuotaExceeded(errors.New("network down")) {
		t.Fatal("plain errors must not count as quota")
	}
}
