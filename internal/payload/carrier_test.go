package payload

import "testing"

func TestCarrier_PrefersPrivateAddress(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "Carol",
			"body": "lunch?",
		},
		"meta": map[string]any{
			"group":   "123456789-987654@g.us",
			"private": "14155550123@s.whatsapp.net",
		},
	})

	ev, err := Decode(BundleWhatsApp, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev.SenderIdentifier != "14155550123@s.whatsapp.net" {
		t.Errorf("Expected private address preferred, got %q", ev.SenderIdentifier)
	}
}

func TestCarrier_GroupAddressFallback(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "Team",
			"body": "standup",
		},
		"meta": "chat 123456789-987654@g.us moved",
	})

	ev, err := Decode(BundleWhatsApp, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev.SenderIdentifier != "123456789-987654@g.us" {
		t.Errorf("Expected group address fallback, got %q", ev.SenderIdentifier)
	}
}

func TestCarrier_NoAddress(t *testing.T) {
	blob := marshalPayload(t, map[string]any{
		"req": map[string]any{
			"titl": "Carol",
			"body": "plain",
		},
	})

	ev, err := Decode(BundleWhatsApp, blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ev.SenderIdentifier != "" {
		t.Errorf("Expected no routing id, got %q", ev.SenderIdentifier)
	}
}
