// Package upload publishes finished videos to YouTube and authenticates
// the per-channel upload handles.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/7mcool/Vortex-Automator/config"
	"github.com/7mcool/Vortex-Automator/model"
	"github.com/7mcool/Vortex-Automator/pipeline"
	"golang.org/x/exp/slog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"
)

// maxChapterLines caps how many chapter lines get appended to the
// description.
const maxChapterLines = 50

// Service uploads videos to one channel. Instances come out of
// Authenticator.Authenticate and carry the channel's locale and category
// settings.
type Service struct {
	yt      *youtube.Service
	channel config.Channel
	logger  *slog.Logger
}

func NewService(yt *youtube.Service, channel config.Channel, logger *slog.Logger) *Service {
	return &Service{yt: yt, channel: channel, logger: logger}
}

// Upload performs a resumable insert with the publish timestamp set, as a
// private video that goes public at publishAt. A quota refusal from the API
// is reported as pipeline.ErrQuotaExceeded so the stage runner can back off.
func (s *Service) Upload(ctx context.Context, videoPath string, md model.Metadata, publishAt time.Time) (string, error) {
	f, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video %s: %w", videoPath, err)
	}
	defer f.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                md.Title,
			Description:          buildDescription(md),
			CategoryId:           s.channel.CategoryID,
			ChannelId:            s.channel.ChannelID,
			DefaultLanguage:      s.channel.DefaultLanguage,
			DefaultAudioLanguage: s.channel.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "private",
			PublishAt:               publishAt.UTC().Format(time.RFC3339),
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	call := s.yt.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f, googleapi.ContentType("video/mp4"))
	response, err := call.Context(ctx).Do()
	if err != nil {
		if isQuotaExceeded(err) {
			return "", fmt.Errorf("insert video: %w", pipeline.ErrQuotaExceeded)
		}
		return "", fmt.Errorf("insert video: %w", err)
	}

	s.logger.Info("upload accepted",
		slog.String("channel", s.channel.ChannelID),
		slog.String("videoId", response.Id))

	return response.Id, nil
}

// buildDescription appends the manual chapter list to the description the
// way YouTube expects it: one "offset - label" line per chapter.
func buildDescription(md model.Metadata) string {
	if len(md.Chapters) == 0 {
		return md.Description
	}

	var b strings.Builder
	b.WriteString(md.Description)
	b.WriteString("\n\nChapters:")
	for i, ch := range md.Chapters {
		if i == maxChapterLines {
			break
		}
		b.WriteString(fmt.Sprintf("\n%s - %s", ch.Offset, ch.Label))
	}

	return b.String()
}

func isQuotaExceeded(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "quotaExceeded" || item.Reason == "uploadLimitExceeded" {
			return true
		}
	}
	return false
}
