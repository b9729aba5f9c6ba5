package relay

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// MagnetPrefix marks a text message carrying a magnet link.
const MagnetPrefix = "magnet:?"

// Message is one inbound chat event, stripped down to what dispatch
// needs: who sent it, where to reply, and the payload.
type Message struct {
	SenderID int64
	ChatID   int64
	Text     string
	// FileRef is the chat provider's opaque reference to a document
	// attachment. Empty when the message carries no attachment.
	FileRef string
}

// Action is what an authorized message should trigger.
type Action int

const (
	// ActionIgnore means the payload is not for us; no reply is sent.
	ActionIgnore Action = iota
	// ActionMagnet submits the message text as a magnet link.
	ActionMagnet
	// ActionFile fetches the attachment and submits its bytes.
	ActionFile
	// ActionShutdown raises the cooperative shutdown flag.
	ActionShutdown
)

// ParseAllowedUsers parses the comma-separated allow-list from the
// configuration. Malformed entries are dropped from the set, with a
// warning so a typo does not silently lock a user out.
func ParseAllowedUsers(csv string, logger zerolog.Logger) map[int64]struct{} {
	allowed := make(map[int64]struct{})
	for _, entry := range strings.Split(csv, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, err := strconv.ParseInt(entry, 10, 64)
		if err != nil {
			logger.Warn().Str("entry", entry).Msg("Ignoring malformed allow-list entry")
			continue
		}
		allowed[id] = struct{}{}
	}
	return allowed
}

// Gate decides whether an inbound message may trigger an ingestion and
// what kind. It is read-only after construction and safe to share
// across concurrent events.
type Gate struct {
	allowed        map[int64]struct{}
	shutdownPhrase string
}

// NewGate creates a gate over the given allow-list. shutdownPhrase may
// be empty to disable the shutdown command.
func NewGate(allowed map[int64]struct{}, shutdownPhrase string) *Gate {
	return &Gate{
		allowed:        allowed,
		shutdownPhrase: shutdownPhrase,
	}
}

// Allowed reports whether the sender is on the allow-list. Membership
// is the sole authorization rule.
func (g *Gate) Allowed(senderID int64) bool {
	_, ok := g.allowed[senderID]
	return ok
}

// Classify decides what an authorized message should trigger. An
// attachment wins over any text; text is only meaningful when it is the
// shutdown phrase or starts with the magnet prefix.
func (g *Gate) Classify(msg Message) Action {
	switch {
	case msg.FileRef != "":
		return ActionFile
	case g.shutdownPhrase != "" && msg.Text == g.shutdownPhrase:
		return ActionShutdown
	case strings.HasPrefix(msg.Text, MagnetPrefix):
		return ActionMagnet
	default:
		return ActionIgnore
	}
}
