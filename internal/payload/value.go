// Package payload deserializes notification record blobs into a generic
// value tree and extracts sender, conversation and body fields from it.
//
// The tree is the plist decoder's output: map[string]any, []any, and leaves
// (string, []byte, bool, numbers, nil). Everything here operates structurally
// on that tree; raw bytes are never reparsed after decode.
package payload

import "strings"

// BlockedKeys prunes subtrees already claimed by another search, so one
// media category cannot reuse bytes claimed by a different one.
type BlockedKeys map[string]struct{}

// NewBlockedKeys builds a blocked-key set from key names.
func NewBlockedKeys(keys ...string) BlockedKeys {
	b := make(BlockedKeys, len(keys))
	for _, k := range keys {
		b[k] = struct{}{}
	}
	return b
}

// Has reports whether key is blocked.
func (b BlockedKeys) Has(key string) bool {
	if b == nil {
		return false
	}
	_, ok := b[key]
	return ok
}

// FindKey searches the tree for the first value stored under key, at any
// depth, skipping blocked subtrees. Traversal is map keys, then array
// elements, depth-first.
func FindKey(v any, key string, blocked BlockedKeys) (any, bool) {
	switch node := v.(type) {
	case map[string]any:
		if val, ok := node[key]; ok && !blocked.Has(key) {
			return val, true
		}
		for k, child := range node {
			if blocked.Has(k) {
				continue
			}
			if val, ok := FindKey(child, key, blocked); ok {
				return val, ok
			}
		}
	case []any:
		for _, child := range node {
			if val, ok := FindKey(child, key, blocked); ok {
				return val, ok
			}
		}
	}
	return nil, false
}

// FindFirstKey tries each key in order and returns the first hit. Key lists
// are ordered by priority: producer schemas drift across app versions.
func FindFirstKey(v any, keys []string, blocked BlockedKeys) (any, bool) {
	for _, key := range keys {
		if val, ok := FindKey(v, key, blocked); ok {
			return val, true
		}
	}
	return nil, false
}

// FindStringKey is FindFirstKey restricted to non-empty string values.
func FindStringKey(v any, keys []string, blocked BlockedKeys) string {
	for _, key := range keys {
		if val, ok := FindKey(v, key, blocked); ok {
			if s, ok := val.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// Strings collects every string leaf in the tree, skipping blocked subtrees,
// in traversal order.
func Strings(v any, blocked BlockedKeys) []string {
	var out []string
	walkLeaves(v, blocked, func(leaf any) {
		if s, ok := leaf.(string); ok {
			out = append(out, s)
		}
	})
	return out
}

// walkLeaves visits every leaf value in the tree. The three traversal
// branches are map, array, and leaf.
func walkLeaves(v any, blocked BlockedKeys, visit func(leaf any)) {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if blocked.Has(k) {
				continue
			}
			walkLeaves(child, blocked, visit)
		}
	case []any:
		for _, child := range node {
			walkLeaves(child, blocked, visit)
		}
	default:
		visit(node)
	}
}

// WalkValues visits every value in the tree (containers included) with the
// map key that led to it, or "" for array elements and the root. Returning
// false from visit stops the walk.
func WalkValues(v any, blocked BlockedKeys, visit func(key string, v any) bool) bool {
	if !visit("", v) {
		return false
	}
	return walkChildren(v, blocked, visit)
}

func walkChildren(v any, blocked BlockedKeys, visit func(key string, v any) bool) bool {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if blocked.Has(k) {
				continue
			}
			if !visit(k, child) {
				return false
			}
			if !walkChildren(child, blocked, visit) {
				return false
			}
		}
	case []any:
		for _, child := range node {
			if !visit("", child) {
				return false
			}
			if !walkChildren(child, blocked, visit) {
				return false
			}
		}
	}
	return true
}

// StringValue unwraps a string leaf, tolerating []byte leaves that hold text.
func StringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}
