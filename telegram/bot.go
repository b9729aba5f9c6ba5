package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/qbitrelay/relay"
)

// shutdownPollInterval bounds how long a raised shutdown flag can go
// unobserved by the run loop.
const shutdownPollInterval = time.Second

// MessageHandler consumes one inbound chat event.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg relay.Message)
}

// Bot wires the Telegram transport to the relay: it long-polls for
// updates, converts them to relay messages, downloads document
// attachments, and delivers replies. It satisfies relay.FileFetcher
// and relay.Replier.
type Bot struct {
	api        *bot.Bot
	httpClient *http.Client
	handler    MessageHandler
	shutdown   *relay.ShutdownSignal
	logger     zerolog.Logger
}

// NewBot creates the Telegram bot. SetHandler must be called before Run.
func NewBot(token string, shutdown *relay.ShutdownSignal, logger zerolog.Logger) (*Bot, error) {
	b := &Bot{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		shutdown:   shutdown,
		logger:     logger,
	}

	api, err := bot.New(token, bot.WithDefaultHandler(b.onUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.api = api

	return b, nil
}

// SetHandler installs the dispatch handler for inbound messages.
func (b *Bot) SetHandler(handler MessageHandler) {
	b.handler = handler
}

// Run starts long polling and blocks until the context is cancelled or
// a shutdown is requested through the chat command.
func (b *Bot) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.api.Start(ctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(shutdownPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if b.shutdown.Requested() {
					b.logger.Info().Msg("Shutdown flag set, stopping bot")
					cancel()
					return nil
				}
			}
		}
	})

	return g.Wait()
}

// onUpdate converts a Telegram update into a relay message and hands it
// to the dispatch handler. The bot library runs handlers concurrently,
// one per update, which matches the one-task-per-event model.
func (b *Bot) onUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || b.handler == nil {
		return
	}

	m := update.Message
	msg := relay.Message{
		SenderID: m.From.ID,
		ChatID:   m.Chat.ID,
		Text:     m.Text,
	}
	if m.Document != nil {
		msg.FileRef = m.Document.FileID
	}

	b.handler.HandleMessage(ctx, msg)
}

// FetchFile downloads a document from Telegram's file storage by its
// opaque file id.
func (b *Bot) FetchFile(ctx context.Context, fileRef string) ([]byte, error) {
	info, err := b.api.GetFile(ctx, &bot.GetFileParams{FileID: fileRef})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file reference: %w", err)
	}
	if info.FilePath == "" {
		return nil, fmt.Errorf("telegram returned no file path for %s", fileRef)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.api.FileDownloadLink(info), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The download URL embeds the bot token, so it stays out of
		// the error message.
		return nil, fmt.Errorf("file download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	b.logger.Debug().Str("file_path", info.FilePath).Int("bytes", len(data)).Msg("Downloaded torrent file")
	return data, nil
}

// Reply sends a plain-text message to a chat.
func (b *Bot) Reply(ctx context.Context, chatID int64, text string) error {
	_, err := b.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
