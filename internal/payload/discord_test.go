package payload

import "testing"

func TestDiscord_BodyResplit(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "general",
			"body": "Bob: hello there",
		},
	})

	ev, err := Decode(BundleDiscord, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if ev.Sender != "Bob" {
		t.Errorf("Expected sender Bob, got %q", ev.Sender)
	}
	if ev.Body != "hello there" {
		t.Errorf("Expected body %q, got %q", "hello there", ev.Body)
	}
	if ev.ChannelName != "general" {
		t.Errorf("Expected prior title kept as channel name, got %q", ev.ChannelName)
	}
}

func TestDiscord_ResplitSkipsLongPrefix(t *testing.T) {
	longPrefix := "this prefix is definitely much longer than a display name"
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "general",
			"body": longPrefix + ": rest",
		},
	})

	ev, err := Decode(BundleDiscord, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev.Sender != "general" {
		t.Errorf("Expected sender untouched, got %q", ev.Sender)
	}
	if ev.Body != longPrefix+": rest" {
		t.Errorf("Expected body untouched, got %q", ev.Body)
	}
}

func TestDiscord_StructuredIdentityKeys(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "friend",
			"body": "yo",
		},
		"channel_id": "11111111111111111",
		"guild_id":   "22222222222222222",
	})

	ev, err := Decode(BundleDiscord, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if ev.ChannelID != "11111111111111111" {
		t.Errorf("Expected channel id from structured key, got %q", ev.ChannelID)
	}
	if ev.GuildID != "22222222222222222" {
		t.Errorf("Expected guild id from structured key, got %q", ev.GuildID)
	}
	if ev.SenderIdentifier != "22222222222222222:11111111111111111" {
		t.Errorf("Expected guildID:channelID routing id, got %q", ev.SenderIdentifier)
	}
}

func TestDiscord_SingleSnowflakeIsChannel(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "friend",
			"body": "yo",
		},
		"deep": map[string]any{
			"link": "https://example.com/channels/33333333333333333",
		},
	})

	ev, err := Decode(BundleDiscord, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if ev.ChannelID != "33333333333333333" {
		t.Errorf("Expected lone snowflake treated as channel, got %q", ev.ChannelID)
	}
	if ev.SenderIdentifier != "33333333333333333" {
		t.Errorf("Expected channel routing id, got %q", ev.SenderIdentifier)
	}
}

func TestDiscord_SnowflakeFallbackExcludesKnownIDs(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "friend",
			"body": "yo",
		},
		"message_id": "44444444444444444",
		"extra": map[string]any{
			"a": "seen 44444444444444444 already",
			"b": "author 55555555555555555 here",
		},
	})

	ev, err := Decode(BundleDiscord, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Two candidates, one claimed as message id: the other becomes the
	// sender-identifier fallback.
	if ev.SenderIdentifier != "55555555555555555" {
		t.Errorf("Expected author fallback 55555555555555555, got %q", ev.SenderIdentifier)
	}
}

func TestDiscord_EmbeddedBinaryScanned(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "friend",
			"body": "yo",
		},
		"usda": []byte("binary junk 66666666666666666 more junk"),
	})

	ev, err := Decode(BundleDiscord, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev.ChannelID != "66666666666666666" {
		t.Errorf("Expected snowflake recovered from embedded binary field, got %q", ev.ChannelID)
	}
}

func TestScanSnowflakes_Bounds(t *testing.T) {
	root := map[string]any{
		"short":   "1234567890123456",      // 16 digits, too short
		"ok":      "12345678901234567",     // 17 digits
		"alsoOK":  "12345678901234567890",  // 20 digits
		"tooLong": "123456789012345678901", // 21 digits still yields embedded matches
	}

	got := scanSnowflakes(root)
	for _, id := range got {
		if len(id) < 17 || len(id) > 20 {
			t.Errorf("Snowflake %q outside 17–20 digit bounds", id)
		}
	}

	seen := make(map[string]bool)
	for _, id := range got {
		seen[id] = true
	}
	if !seen["12345678901234567"] || !seen["12345678901234567890"] {
		t.Errorf("Expected both in-bounds snowflakes, got %v", got)
	}
}
