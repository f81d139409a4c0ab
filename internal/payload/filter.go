package payload

import (
	"strings"
	"unicode"
)

// mediaLabels are body texts that only name the attached media. The stored
// content must be blank for these so the UI renders from the media itself,
// not the label. Labels arrive in the label's own language.
var mediaLabels = map[string]struct{}{
	"sticker":       {},
	"photo":         {},
	"image":         {},
	"gif":           {},
	"video":         {},
	"audio":         {},
	"voice message": {},
	"voice note":    {},
	"foto":          {},
	"aufkleber":     {},
	"стикер":        {},
	"фото":          {},
	"贴纸":            {},
	"图片":            {},
	"照片":            {},
	"ステッカー":         {},
	"写真":            {},
}

// BlankMediaLabel returns "" when body collapses, after stripping emoji and
// punctuation, to exactly one media-label word; otherwise body is returned
// unchanged.
func BlankMediaLabel(body string) string {
	if IsMediaLabel(body) {
		return ""
	}
	return body
}

// IsMediaLabel reports whether body is purely a media-type label.
func IsMediaLabel(body string) bool {
	collapsed := collapseLabel(body)
	if collapsed == "" {
		return false
	}
	_, ok := mediaLabels[collapsed]
	return ok
}

// MentionsMedia reports whether body contains any media-label keyword. Used
// as a positive media signal by the avatar fallback scan.
func MentionsMedia(body string) bool {
	lower := strings.ToLower(body)
	for label := range mediaLabels {
		if strings.Contains(lower, label) {
			return true
		}
	}
	return false
}

// collapseLabel lowercases and strips emoji, punctuation and symbols,
// keeping letters, digits and single spaces.
func collapseLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// Emoji, punctuation and symbols are dropped.
	}
	return strings.TrimSpace(b.String())
}
