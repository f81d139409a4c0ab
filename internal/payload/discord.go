package payload

import (
	"regexp"
	"strings"
)

// Gamer-chat key aliases. The app has shipped several userInfo layouts;
// structured keys are tried first and the snowflake scan is the fallback.
var (
	channelIDKeys = []string{"channel_id", "channelId", "chid"}
	guildIDKeys   = []string{"guild_id", "guildId", "gid"}
	authorIDKeys  = []string{"author_id", "authorId", "aid"}
	messageIDKeys = []string{"message_id", "messageId", "mid"}

	// Secondary embedded binary field: some versions tuck a serialized
	// userInfo blob under one of these keys.
	embeddedInfoKeys = []string{"usda", "userInfoData"}
)

// snowflakeRe matches the 17–20 digit numeric identifiers the gamer-chat
// format uses for channels, guilds and users.
var snowflakeRe = regexp.MustCompile(`\d{17,20}`)

// maxResplitNameLen bounds the "<name>: <text>" split; real display names
// are short, and a longer prefix is almost certainly message text.
const maxResplitNameLen = 35

// extractDiscordIdentity recovers channel, guild and author identifiers.
// Structured keys win; otherwise every decoded string (plus the embedded
// binary field, if present) is scanned for snowflake-shaped tokens, and ids
// already claimed as the message or channel id are excluded before picking
// an author candidate. Best-effort: the result is a routing hint, never a
// display field.
func extractDiscordIdentity(ev *Event) {
	ev.ChannelID = FindStringKey(ev.Root, channelIDKeys, nil)
	ev.GuildID = FindStringKey(ev.Root, guildIDKeys, nil)
	authorID := FindStringKey(ev.Root, authorIDKeys, nil)
	messageID := FindStringKey(ev.Root, messageIDKeys, nil)

	if ev.ChannelID == "" || authorID == "" {
		candidates := scanSnowflakes(ev.Root)

		if ev.ChannelID == "" && len(candidates) == 1 {
			// Exactly one id in the payload is most often the channel.
			ev.ChannelID = candidates[0]
		}

		if authorID == "" {
			for _, c := range candidates {
				if c == messageID || c == ev.ChannelID || c == ev.GuildID {
					continue
				}
				authorID = c
				break
			}
		}
	}

	switch {
	case ev.GuildID != "" && ev.ChannelID != "":
		ev.SenderIdentifier = ev.GuildID + ":" + ev.ChannelID
	case ev.ChannelID != "":
		ev.SenderIdentifier = ev.ChannelID
	case authorID != "":
		ev.SenderIdentifier = authorID
	}
}

// scanSnowflakes collects snowflake-shaped tokens from every string leaf and
// from the embedded binary field, preserving first-seen order.
func scanSnowflakes(root any) []string {
	var out []string
	seen := make(map[string]struct{})

	add := func(tokens []string) {
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	for _, s := range Strings(root, nil) {
		add(snowflakeRe.FindAllString(s, -1))
	}

	if v, ok := FindFirstKey(root, embeddedInfoKeys, nil); ok {
		if b, ok := v.([]byte); ok {
			add(snowflakeRe.FindAllString(string(b), -1))
		}
	}

	return out
}

// resplitDiscordBody corrects threaded replies, where the source embeds the
// sender name inside the body ("<name>: <text>") instead of the title. The
// name is promoted to the sender field and the prior title, when distinct,
// is kept as the channel name.
func resplitDiscordBody(ev *Event) {
	idx := strings.Index(ev.Body, ": ")
	if idx <= 0 {
		return
	}

	name := strings.TrimSpace(ev.Body[:idx])
	rest := strings.TrimSpace(ev.Body[idx+2:])
	if name == "" || len(name) >= maxResplitNameLen || rest == "" {
		return
	}

	if ev.Sender != "" && ev.Sender != name && ev.ChannelName == "" {
		ev.ChannelName = ev.Sender
	}
	ev.Sender = name
	ev.Body = rest
}
