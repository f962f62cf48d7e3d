package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/payops/payday-bot/internal/messenger"
	"github.com/payops/payday-bot/internal/models"
	"github.com/payops/payday-bot/internal/parser"
	"github.com/payops/payday-bot/internal/track"
	"github.com/payops/payday-bot/pkg/checksum"
)

// Dispatcher runs one payroll batch and delivers its report.
type Dispatcher interface {
	Process(ctx context.Context, rows []models.PayrollRow, reportChannel string) models.DeliveryReport
}

// Resolver correlates a reaction with a tracked send.
type Resolver interface {
	Resolve(messageID, reactingUserID string) (track.Confirmation, bool)
}

// Guard decides whether an inbound file is new or a redelivery.
type Guard interface {
	ShouldProcess(fileID string) bool
}

// FileFetcher downloads a shared file's content.
type FileFetcher interface {
	FetchFile(ctx context.Context, fileID string, w io.Writer) (string, error)
}

// Notifier posts plain messages to a channel.
type Notifier interface {
	PostChannel(ctx context.Context, channelID, text string) error
}

type Config struct {
	DefaultChannel string
	AdminChannel   string
	ConfirmEmoji   string
}

// Service ties the inbound triggers to the dispatch pipeline: shared-file
// events and direct uploads on one side, reaction events on the other.
type Service struct {
	dispatcher Dispatcher
	fetcher    FileFetcher
	notifier   Notifier
	tracker    Resolver
	guard      Guard
	config     Config
	logger     *zap.SugaredLogger
}

func NewService(dispatcher Dispatcher, fetcher FileFetcher, notifier Notifier, tracker Resolver, guard Guard, cfg Config, logger *zap.SugaredLogger) *Service {
	return &Service{
		dispatcher: dispatcher,
		fetcher:    fetcher,
		notifier:   notifier,
		tracker:    tracker,
		guard:      guard,
		config:     cfg,
		logger:     logger,
	}
}

// HandleSharedFile processes a platform file_shared event: guard check,
// download to a temp file, parse, dispatch, report. The temp file is removed
// in a deferred cleanup no matter where the run fails. Failures notify the
// triggering channel; nothing is retried.
func (s *Service) HandleSharedFile(ctx context.Context, fileID, channelID string) {
	channel := s.reportChannel(channelID)

	if !s.guard.ShouldProcess(fileID) {
		return
	}

	tmp, err := os.CreateTemp("", "payroll-*.csv")
	if err != nil {
		s.notifyError(ctx, channel, fmt.Errorf("failed to create temp file: %w", err))
		return
	}
	path := tmp.Name()
	defer os.Remove(path)

	_, err = s.fetcher.FetchFile(ctx, fileID, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if errors.Is(err, messenger.ErrUnsupportedFile) {
		return
	}
	if err != nil {
		s.notifyError(ctx, channel, err)
		return
	}

	_, _ = s.processFile(ctx, path, channel)
}

// HandleUpload processes a directly uploaded payroll file. The caller owns
// the file at path; dedup keys on a content fingerprint so re-uploading the
// same payroll under another name is still skipped.
func (s *Service) HandleUpload(ctx context.Context, path, channelID string) (models.DeliveryReport, error) {
	channel := s.reportChannel(channelID)

	sum, err := checksum.GetFileChecksum(path)
	if err != nil {
		s.notifyError(ctx, channel, err)
		return models.DeliveryReport{}, err
	}
	if !s.guard.ShouldProcess(sum) {
		return models.DeliveryReport{}, models.ErrDuplicateFile
	}

	return s.processFile(ctx, path, channel)
}

// HandleReaction relays a recipient's confirmation to the admin channel.
// Only the confirmation emoji is considered, and only when the reacting user
// is the tracked recipient of the message.
func (s *Service) HandleReaction(ctx context.Context, emoji, messageID, userID string) {
	if emoji != s.config.ConfirmEmoji {
		return
	}

	conf, ok := s.tracker.Resolve(messageID, userID)
	if !ok {
		return
	}

	text := fmt.Sprintf(":%s: %s confirmó la recepción de su pago.", s.config.ConfirmEmoji, conf.Name)
	if err := s.notifier.PostChannel(ctx, s.config.AdminChannel, text); err != nil {
		s.logger.Errorw("failed to relay confirmation", "recipient", conf.RecipientID, "error", err)
	}
}

func (s *Service) processFile(ctx context.Context, path, channel string) (models.DeliveryReport, error) {
	rows, err := parser.ReadFile(path)
	if err != nil {
		s.notifyError(ctx, channel, err)
		return models.DeliveryReport{}, err
	}
	return s.dispatcher.Process(ctx, rows, channel), nil
}

func (s *Service) reportChannel(channelID string) string {
	if channelID != "" {
		return channelID
	}
	return s.config.DefaultChannel
}

func (s *Service) notifyError(ctx context.Context, channel string, err error) {
	s.logger.Errorw("payroll file processing failed", "channel", channel, "error", err)
	text := fmt.Sprintf("No se pudo procesar el archivo de sueldos: %v", err)
	if perr := s.notifier.PostChannel(ctx, channel, text); perr != nil {
		s.logger.Errorw("failed to notify processing error", "channel", channel, "error", perr)
	}
}
