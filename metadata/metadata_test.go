package metadata

import (
	"strings"
	"testing"
)

func TestParseResponseStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"title\": \"hi\", \"description\": \"d\"}\n```"

	resp, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "hi" {
		t.Fatalf("title: got %q", resp.Title)
	}
}

func TestParseResponseRejectsMissingTitle(t *testing.T) {
	if _, err := parseResponse(`{"description": "d"}`); err == nil {
		t.Fatal("expected an error for a missing title")
	}
}

func TestNormalizeTitle(t *testing.T) {
	resp := response{Title: strings.Repeat("long title ", 20)}

	md := normalize(resp, 3)
	if md.Title != strings.ToUpper(md.Title) {
		t.Fatal("title must be upper-cased")
	}
	if got := len([]rune(md.Title)); got != 100 {
		t.Fatalf("title must be clamped to 100 runes, got %d", got)
	}
}

func TestNormalizeCapsHashtags(t *testing.T) {
	resp := response{
		Title:       "T",
		Description: "Watch this! #one #two #three #four #five",
	}

	md := normalize(resp, 3)
	if got := strings.Count(md.Description, "#"); got != 3 {
		t.Fatalf("expected 3 hashtags, got %d in %q", got, md.Description)
	}
	if !strings.Contains(md.Description, "#three") || strings.Contains(md.Description, "#four") {
		t.Fatalf("wrong hashtags kept: %q", md.Description)
	}
}

func TestNormalizeShortVideoSuppressesChapters(t *testing.T) {
	resp := response{
		Title:          "T",
		ManualChapters: []string{"00:00 - Intro", "02:00 - End"},
	}

	md := normalize(resp, 4)
	if len(md.Chapters) != 0 {
		t.Fatalf("short videos must not carry chapters, got %v", md.Chapters)
	}
	if md.DisableAutoChapters {
		t.Fatal("short videos must keep auto chapters enabled")
	}
}

func TestNormalizeLongVideoKeepsChapters(t *testing.T) {
	resp := response{
		Title:          "T",
		ManualChapters: []string{"00:00 - Intro", "garbage line", "06:00 - Deep dive"},
	}

	md := normalize(resp, 12)
	if len(md.Chapters) != 2 {
		t.Fatalf("expected 2 parsed chapters, got %v", md.Chapters)
	}
	if md.Chapters[1].Offset != "06:00" || md.Chapters[1].Label != "Deep dive" {
		t.Fatalf("chapter parsed wrong: %+v", md.Chapters[1])
	}
	if !md.DisableAutoChapters {
		t.Fatal("long videos with chapters must disable auto chapters")
	}
}

func TestFallbackLongVideo(t *testing.T) {
	md := Fallback(12)

	if md.Title == "" {
		t.Fatal("fallback must carry a title")
	}
	if len(md.Chapters) != 3 {
		t.Fatalf("expected 3 synthesized chapters, got %v", md.Chapters)
	}
	if md.Chapters[0].Offset != "00:00" {
		t.Fatalf("first chapter must start at 00:00, got %s", md.Chapters[0].Offset)
	}
	if md.Chapters[1].Offset != "06:00" || md.Chapters[2].Offset != "11:00" {
		t.Fatalf("synthesized offsets wrong: %v", md.Chapters)
	}
	if !md.DisableAutoChapters {
		t.Fatal("fallback with chapters must disable auto chapters")
	}

	// deterministic: same input, same output
	again := Fallback(12)
	if md.Title != again.Title || len(md.Chapters) != len(again.Chapters) {
		t.Fatal("fallback must be deterministic")
	}
}

func TestFallbackShortVideo(t *testing.T) {
	md := Fallback(3)
	if len(md.Chapters) != 0 {
		t.Fatalf("short fallback must not carry chapters, got %v", md.Chapters)
	}
	if md.DisableAutoChapters {
		t.Fatal("short fallback must keep auto chapters enabled")
	}
	if got := strings.Count(md.Description, "#"); got > 3 {
		t.Fatalf("fallback description has too many hashtags: %d", got)
	}
}
