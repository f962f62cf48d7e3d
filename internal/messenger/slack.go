package messenger

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/payops/payday-bot/internal/render"
)

// ErrUnsupportedFile marks a shared file whose declared type is not the
// supported tabular format. The caller skips it silently.
var ErrUnsupportedFile = errors.New("unsupported file type")

// SlackMessenger is the only component that talks to the Slack Web API.
// Everything above it works against the dispatch.Messenger and bot interfaces.
type SlackMessenger struct {
	client *slack.Client
	logger *zap.SugaredLogger
}

func NewSlackMessenger(token string, debug bool, logger *zap.SugaredLogger) *SlackMessenger {
	return &SlackMessenger{
		client: slack.New(token, slack.OptionDebug(debug)),
		logger: logger,
	}
}

// SendDirect DMs one recipient. The returned message timestamp is Slack's
// message identifier and is what the confirmation tracker keys on.
func (m *SlackMessenger) SendDirect(ctx context.Context, userID string, msg render.Message) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if len(msg.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(msg.Blocks...))
	}

	_, timestamp, err := m.client.PostMessageContext(ctx, userID, opts...)
	if err != nil {
		return "", fmt.Errorf("slack send to %s failed: %w", userID, err)
	}
	return timestamp, nil
}

func (m *SlackMessenger) PostChannel(ctx context.Context, channelID, text string) error {
	_, _, err := m.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post to %s failed: %w", channelID, err)
	}
	return nil
}

func (m *SlackMessenger) UploadReport(ctx context.Context, channelID, filename, content string) error {
	_, err := m.client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:  channelID,
		Filename: filename,
		Title:    filename,
		Content:  content,
		FileSize: len(content),
	})
	if err != nil {
		return fmt.Errorf("slack upload to %s failed: %w", channelID, err)
	}
	return nil
}

// FetchFile downloads a shared file's content into w using the bot's bearer
// token. Files whose declared type is not csv are not downloaded.
func (m *SlackMessenger) FetchFile(ctx context.Context, fileID string, w io.Writer) (string, error) {
	info, _, _, err := m.client.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return "", fmt.Errorf("failed to fetch file metadata for %s: %w", fileID, err)
	}
	if info.Filetype != "csv" {
		m.logger.Infow("ignoring non-csv file", "file_id", fileID, "filetype", info.Filetype)
		return info.Filetype, ErrUnsupportedFile
	}

	if err := m.client.GetFileContext(ctx, info.URLPrivateDownload, w); err != nil {
		return info.Filetype, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	return info.Filetype, nil
}
