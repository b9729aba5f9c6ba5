package relay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/s0up4200/qbitrelay/qbittorrent"
)

// Reply texts sent back to the chat. Failures are deliberately generic:
// the underlying error is logged for the operator, never echoed to the
// chat where it could leak the daemon address or response bodies.
const (
	replyQueued       = "✅ Torrent queued for download"
	replyFailed       = "⛔ Could not add the torrent, check the logs"
	replyFetchFailed  = "⛔ Could not download the torrent file"
	replyShuttingDown = "🛑 Shutting down"
)

// Submitter is the slice of the qBittorrent client that dispatch needs.
// Satisfied by *qbittorrent.Client.
type Submitter interface {
	Login(ctx context.Context, username, password string) error
	AddTorrent(ctx context.Context, source qbittorrent.TorrentSource) error
	Version(ctx context.Context) (string, error)
}

// ClientFactory builds a fresh daemon client for one ingestion. Each
// ingestion logs in on its own client; no session is cached across
// attempts.
type ClientFactory func() (Submitter, error)

// FileFetcher retrieves attachment bytes by the chat provider's opaque
// file reference.
type FileFetcher interface {
	FetchFile(ctx context.Context, fileRef string) ([]byte, error)
}

// Replier delivers a plain-text reply to a chat.
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string) error
}

// HandlerConfig wires a Handler's collaborators.
type HandlerConfig struct {
	Gate      *Gate
	NewClient ClientFactory
	Fetcher   FileFetcher
	Replier   Replier
	Shutdown  *ShutdownSignal
	Username  string
	Password  string
}

// Handler dispatches inbound chat events: authorize, classify, fetch
// the attachment if any, then log in and submit to the daemon. It is
// stateless across events and safe for concurrent use.
type Handler struct {
	gate      *Gate
	newClient ClientFactory
	fetcher   FileFetcher
	replier   Replier
	shutdown  *ShutdownSignal
	username  string
	password  string
	logger    zerolog.Logger
}

// NewHandler creates a dispatch handler.
func NewHandler(cfg HandlerConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		gate:      cfg.Gate,
		newClient: cfg.NewClient,
		fetcher:   cfg.Fetcher,
		replier:   cfg.Replier,
		shutdown:  cfg.Shutdown,
		username:  cfg.Username,
		password:  cfg.Password,
		logger:    logger,
	}
}

// HandleMessage processes one inbound chat event. Every fallible step
// ends in a terminal outcome rather than a panic or a propagated error:
// unauthorized senders and unrecognized payloads get silence, failures
// get a generic notice, successful ingestions get an acknowledgment.
func (h *Handler) HandleMessage(ctx context.Context, msg Message) {
	if !h.gate.Allowed(msg.SenderID) {
		// Silence by design: no denial notice that would confirm the
		// bot's presence to strangers.
		h.logger.Debug().Int64("sender_id", msg.SenderID).Msg("Dropping message from unauthorized sender")
		return
	}

	switch h.gate.Classify(msg) {
	case ActionShutdown:
		h.logger.Info().Int64("sender_id", msg.SenderID).Msg("Shutdown requested via chat command")
		h.shutdown.Request()
		h.reply(ctx, msg.ChatID, replyShuttingDown)

	case ActionMagnet:
		name := MagnetDisplayName(msg.Text)
		if err := h.submit(ctx, qbittorrent.MagnetSource(msg.Text)); err != nil {
			h.logger.Error().Err(err).Str("name", name).Msg("Failed to enqueue magnet link")
			h.reply(ctx, msg.ChatID, replyFailed)
			return
		}
		h.logger.Info().Str("name", name).Msg("Magnet link enqueued")
		h.reply(ctx, msg.ChatID, queuedReply(name))

	case ActionFile:
		data, err := h.fetcher.FetchFile(ctx, msg.FileRef)
		if err != nil {
			h.logger.Error().Err(err).Str("file_ref", msg.FileRef).Msg("Failed to fetch torrent file")
			h.reply(ctx, msg.ChatID, replyFetchFailed)
			return
		}
		if err := h.submit(ctx, qbittorrent.FileSource(data)); err != nil {
			h.logger.Error().Err(err).Int("bytes", len(data)).Msg("Failed to enqueue torrent file")
			h.reply(ctx, msg.ChatID, replyFailed)
			return
		}
		h.logger.Info().Int("bytes", len(data)).Msg("Torrent file enqueued")
		h.reply(ctx, msg.ChatID, queuedReply(""))

	case ActionIgnore:
		// Not for us; stay silent.
	}
}

// submit performs one ingestion: fresh client, login, submit. The
// session lives exactly as long as the attempt.
func (h *Handler) submit(ctx context.Context, source qbittorrent.TorrentSource) error {
	client, err := h.newClient()
	if err != nil {
		return fmt.Errorf("failed to create qBittorrent client: %w", err)
	}

	if err := client.Login(ctx, h.username, h.password); err != nil {
		return err
	}

	if version, err := client.Version(ctx); err == nil {
		h.logger.Debug().Str("version", version).Msg("qBittorrent version")
	}

	return client.AddTorrent(ctx, source)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.replier.Reply(ctx, chatID, text); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

func queuedReply(name string) string {
	if name == "" {
		return replyQueued
	}
	return fmt.Sprintf("✅ Torrent %s queued for download", name)
}
