package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"github.com/payops/payday-bot/internal/models"
)

// BotHandler is the application surface the HTTP layer forwards into.
type BotHandler interface {
	HandleSharedFile(ctx context.Context, fileID, channelID string)
	HandleUpload(ctx context.Context, path, channelID string) (models.DeliveryReport, error)
	HandleReaction(ctx context.Context, emoji, messageID, userID string)
}

type EventService struct {
	bot           BotHandler
	signingSecret string
	logger        *zap.SugaredLogger
}

func NewEventService(bot BotHandler, signingSecret string, logger *zap.SugaredLogger) *EventService {
	return &EventService{bot: bot, signingSecret: signingSecret, logger: logger}
}

// HandleSlackEvents receives the Events API callbacks. The request signature
// is verified before anything is parsed; callback events are acked right away
// and processed in the background, as Slack expects a fast 200.
func (h *EventService) HandleSlackEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		http.Error(w, "missing signature headers", http.StatusUnauthorized)
		return
	}
	if _, err := verifier.Write(body); err != nil {
		http.Error(w, "failed to verify request", http.StatusInternalServerError)
		return
	}
	if err := verifier.Ensure(); err != nil {
		http.Error(w, "signature verification failed", http.StatusUnauthorized)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		http.Error(w, "failed to parse event", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "failed to parse challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))
	case slackevents.CallbackEvent:
		h.dispatchCallback(event.InnerEvent)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *EventService) dispatchCallback(inner slackevents.EventsAPIInnerEvent) {
	switch ev := inner.Data.(type) {
	case *slackevents.FileSharedEvent:
		h.logger.Infow("file shared event received", "file_id", ev.FileID, "channel", ev.ChannelID)
		go h.bot.HandleSharedFile(context.Background(), ev.FileID, ev.ChannelID)
	case *slackevents.ReactionAddedEvent:
		go h.bot.HandleReaction(context.Background(), ev.Reaction, ev.Item.Timestamp, ev.User)
	default:
		h.logger.Debugw("ignoring event", "type", inner.Type)
	}
}

// HandleUpload accepts a payroll CSV as multipart form data and processes it
// synchronously within the request. The uploaded content is staged in a temp
// file that is removed when the request ends.
func (h *EventService) HandleUpload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "multipart field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "payroll-upload-*.csv")
	if err != nil {
		http.Error(w, "failed to stage upload", http.StatusInternalServerError)
		return
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		http.Error(w, "failed to stage upload", http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		http.Error(w, "failed to stage upload", http.StatusInternalServerError)
		return
	}

	report, err := h.bot.HandleUpload(r.Context(), path, r.FormValue("channel"))
	if err != nil {
		var malformed *models.MalformedInputError
		switch {
		case errors.Is(err, models.ErrDuplicateFile):
			http.Error(w, "file already processed", http.StatusConflict)
		case errors.As(err, &malformed):
			http.Error(w, malformed.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "failed to process payroll file", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"batch_id": report.BatchID,
		"total":    report.Total,
		"sent":     report.Sent,
		"failed":   report.Failed(),
	}); err != nil {
		h.logger.Errorw("failed to encode upload response", "error", err)
	}
}
