package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lookout-hud/lookout/internal/payload"
)

// Key priority lists per media category. Each search prunes the other
// categories' subtrees so one search cannot reuse bytes another claimed.
var (
	avatarKeys     = []string{"profilePicture", "avatar", "senderImage", "sender_image", "icon"}
	stickerKeys    = []string{"sticker", "stickerImage", "artwork", "preview"}
	attachmentKeys = []string{"attachments", "atts"}
	pathKeys       = []string{"maximize_path", "path"}
)

var audioExtensions = map[string]struct{}{
	".m4a":  {},
	".mp3":  {},
	".caf":  {},
	".aac":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".amr":  {},
}

// Extracted holds the media recovered from one decoded payload.
type Extracted struct {
	ProfilePicture *Image
	Sticker        *Image
	Attachment     *Image
	AudioPath      string
}

// Extract runs the independent media searches over the decoded payload tree.
// body is the extracted message body; media keywords in it suppress the
// avatar fallback scan (the record then positively signals media content).
func Extract(root any, body string) *Extracted {
	out := &Extracted{}

	attachPaths := attachmentPaths(root)
	out.Attachment = extractAttachment(root, attachPaths)
	out.ProfilePicture = extractAvatar(root, body, attachPaths)
	out.Sticker = extractSticker(root, attachPaths)
	out.AudioPath = extractAudioPath(root)

	return out
}

// attachmentPaths collects path values from the explicit attachment list.
// These are registered as claimed content so the avatar search cannot
// mistake a content photo for a sender image.
func attachmentPaths(root any) []string {
	var paths []string
	seen := make(map[string]struct{})

	for _, key := range attachmentKeys {
		v, ok := payload.FindKey(root, key, nil)
		if !ok {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for _, pk := range pathKeys {
				if p, ok := m[pk].(string); ok && p != "" {
					if _, dup := seen[p]; !dup {
						seen[p] = struct{}{}
						paths = append(paths, p)
					}
				}
			}
		}
	}

	return paths
}

// extractAttachment prefers the explicit attachment list, decoding the first
// path that resolves to a valid image, then falls back to a global scan for
// a photo-shaped image.
func extractAttachment(root any, attachPaths []string) *Image {
	for _, p := range attachPaths {
		if img := DecodePath(p); img != nil {
			return img
		}
	}

	blocked := payload.NewBlockedKeys(avatarKeys...)
	for _, k := range stickerKeys {
		blocked[k] = struct{}{}
	}

	var found *Image
	payload.WalkValues(root, blocked, func(_ string, v any) bool {
		if img := DecodeValue(v); img != nil && img.IsPhotoShaped() {
			found = img
			return false
		}
		return true
	})
	return found
}

// extractAvatar searches the avatar key list, excluding values already
// claimed as content attachment paths. The global icon scan only runs when
// the record shows no positive signal of media content.
func extractAvatar(root any, body string, attachPaths []string) *Image {
	claimed := make(map[string]struct{}, len(attachPaths))
	for _, p := range attachPaths {
		claimed[p] = struct{}{}
	}

	blocked := payload.NewBlockedKeys(stickerKeys...)
	for _, k := range attachmentKeys {
		blocked[k] = struct{}{}
	}

	for _, key := range avatarKeys {
		v, ok := payload.FindKey(root, key, blocked)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr {
			if _, taken := claimed[s]; taken {
				continue
			}
		}
		if img := DecodeValue(v); img != nil {
			return img
		}
	}

	// No dedicated key. Only fall back to a blind scan when nothing
	// suggests the record carries media content; square small images are
	// then assumed to be avatars.
	if len(attachPaths) > 0 || payload.MentionsMedia(body) {
		return nil
	}

	var found *Image
	payload.WalkValues(root, blocked, func(_ string, v any) bool {
		if s, isStr := v.(string); isStr {
			if _, taken := claimed[s]; taken {
				return true
			}
		}
		if img := DecodeValue(v); img != nil && img.IsIconShaped() {
			found = img
			return false
		}
		return true
	})
	return found
}

// extractSticker searches the artwork/sticker/preview key list with no size
// restriction, then falls back to narrow attachment-path images.
func extractSticker(root any, attachPaths []string) *Image {
	blocked := payload.NewBlockedKeys(avatarKeys...)

	for _, key := range stickerKeys {
		v, ok := payload.FindKey(root, key, blocked)
		if !ok {
			continue
		}
		if img := DecodeValue(v); img != nil {
			return img
		}
	}

	for _, p := range attachPaths {
		if img := DecodePath(p); img != nil && img.Width < stickerMaxWidth {
			return img
		}
	}
	return nil
}

// extractAudioPath scans string leaves for an audio-format path that
// resolves to an existing file on disk.
func extractAudioPath(root any) string {
	for _, s := range payload.Strings(root, nil) {
		ext := strings.ToLower(filepath.Ext(s))
		if _, ok := audioExtensions[ext]; !ok {
			continue
		}
		p := expandHome(s)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
