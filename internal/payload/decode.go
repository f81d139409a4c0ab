package payload

import (
	"fmt"
	"strings"

	"howett.net/plist"
)

// Bundle identifiers of the messaging apps with format-specific extraction.
const (
	BundleTelegram = "ru.keepcoder.Telegram"
	BundleDiscord  = "com.hnc.Discord"
	BundleWhatsApp = "net.whatsapp.WhatsApp"
	BundleSkype    = "com.skype.skype"
)

// Key aliases per field. Producer schemas drift across app and OS versions;
// each list is tried in order and the first non-empty value wins.
var (
	requestKeys  = []string{"req", "request"}
	contentKeys  = []string{"content", "cont"}
	titleKeys    = []string{"titl", "title"}
	subtitleKeys = []string{"subt", "subtitle"}
	bodyKeys     = []string{"body", "message", "text"}
)

// Event is the structured result of decoding one record payload.
type Event struct {
	AppID    string
	Title    string
	Subtitle string
	Body     string

	Sender    string
	GroupName string
	IsGroup   bool

	// Routing identity. SenderIdentifier may encode "guildID:channelID"
	// for the gamer-chat format.
	SenderIdentifier string
	GuildID          string
	ChannelID        string
	ChannelName      string

	// Root is the decoded payload tree, kept for media extraction.
	Root any
}

// Decode deserializes a record blob and extracts identity and body fields.
// A malformed blob is an error; the caller skips that record only.
func Decode(appID string, blob []byte) (*Event, error) {
	var root any
	if _, err := plist.Unmarshal(blob, &root); err != nil {
		return nil, fmt.Errorf("failed to decode payload plist: %w", err)
	}

	ev := &Event{AppID: appID, Root: root}

	// Extraction scopes, most specific first: request→content, request
	// root, then the top-level document.
	var scopes []map[string]any
	var request map[string]any
	if req, ok := FindFirstKey(root, requestKeys, nil); ok {
		request, _ = req.(map[string]any)
	}
	if request != nil {
		for _, key := range contentKeys {
			if c, ok := request[key].(map[string]any); ok {
				scopes = append(scopes, c)
				break
			}
		}
		scopes = append(scopes, request)
	}
	if m, ok := root.(map[string]any); ok {
		scopes = append(scopes, m)
	}

	ev.Title = stripDirectional(scopeString(scopes, titleKeys))
	ev.Subtitle = stripDirectional(scopeString(scopes, subtitleKeys))
	ev.Body = strings.TrimSpace(scopeString(scopes, bodyKeys))

	// A non-empty subtitle means the source distinguished a container from
	// a sender: the title is the in-group sender and the subtitle labels
	// the group/channel.
	if ev.Subtitle != "" {
		ev.Sender = ev.Title
		ev.GroupName = ev.Subtitle
		ev.IsGroup = true
	} else {
		ev.Sender = ev.Title
	}

	switch appID {
	case BundleDiscord:
		extractDiscordIdentity(ev)
		resplitDiscordBody(ev)
	case BundleWhatsApp:
		extractCarrierIdentity(ev)
	}

	return ev, nil
}

// scopeString looks each alias up directly in each scope, scopes in order,
// and returns the first non-empty string.
func scopeString(scopes []map[string]any, keys []string) string {
	for _, scope := range scopes {
		for _, key := range keys {
			if s, ok := scope[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// stripDirectional removes Unicode directionality control characters and
// surrounding whitespace. Several producers wrap titles in LRM/RLM pairs.
func stripDirectional(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\u200e' || r == '\u200f' || r == '\u061c': // LRM, RLM, ALM
			continue
		case r >= '\u202a' && r <= '\u202e': // embedding/override
			continue
		case r >= '\u2066' && r <= '\u2069': // isolates
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
