package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/7mcool/Vortex-Automator/config"
	"github.com/7mcool/Vortex-Automator/pipeline"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const clientSecretFile = "client_secret.json"

// Authenticator builds authenticated upload handles from the shared OAuth
// client secret and a per-channel token file. There is no interactive flow
// here: a channel whose token is missing or dead is skipped by the
// orchestrator, not re-authorized mid-run.
type Authenticator struct {
	authDir string
	logger  *slog.Logger
}

func NewAuthenticator(authDir string, logger *slog.Logger) *Authenticator {
	return &Authenticator{authDir: authDir, logger: logger}
}

// Authenticate returns an upload handle for the channel or an error when
// its credentials are unusable.
func (a *Authenticator) Authenticate(ctx context.Context, ch config.Channel) (pipeline.Uploader, error) {
	secret, err := os.ReadFile(filepath.Join(a.authDir, clientSecretFile))
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(secret, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}

	tokenPath := filepath.Join(a.authDir, ch.TokenFile)
	raw, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token for channel %s: %w", ch.ChannelID, err)
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("parse token for channel %s: %w", ch.ChannelID, err)
	}
	if !token.Valid() && token.RefreshToken == "" {
		return nil, fmt.Errorf("token for channel %s is expired and has no refresh token", ch.ChannelID)
	}

	// The oauth2 client refreshes expired tokens transparently on first use.
	client := oauthCfg.Client(ctx, token)
	yt, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create youtube service for channel %s: %w", ch.ChannelID, err)
	}

	a.logger.Info("channel authenticated", slog.String("channel", ch.ChannelID))

	return NewService(yt, ch, a.logger), nil
}
