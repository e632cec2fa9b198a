package survey

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MediaTypeRegular = "regular"
	MediaTypeID      = "id"
)

// MediaItem is one captured image or signature attachment. Base64 holds
// either the embedded payload or, for file-backed media, a filesystem path.
type MediaItem struct {
	Title     string `json:"title"`
	Base64    string `json:"base64"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// FileBacked reports whether the payload is a filesystem reference rather
// than embedded base64 data.
func (m MediaItem) FileBacked() bool {
	return strings.HasPrefix(m.Base64, "/") || strings.HasPrefix(m.Base64, "file://")
}

// MediaDecodeError categorizes a malformed stored media column. Callers that
// list visits substitute an empty media list instead of failing the row.
type MediaDecodeError struct {
	Reason string
	cause  error
}

func (e *MediaDecodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("decode media list: %s: %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("decode media list: %s", e.Reason)
}

func (e *MediaDecodeError) Unwrap() error { return e.cause }

// EncodeMediaList serializes items to the single-column form. Input order is
// preserved exactly; it is the canonical ordering shown to the user and sent
// to the server.
func EncodeMediaList(items []MediaItem) (string, error) {
	if items == nil {
		items = []MediaItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode media list: %w", err)
	}
	return string(raw), nil
}

// DecodeMediaList parses the stored column back into an ordered media list.
// An empty or missing column decodes to an empty list. Schema violations are
// returned as *MediaDecodeError.
func DecodeMediaList(raw string) ([]MediaItem, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []MediaItem{}, nil
	}

	var items []MediaItem
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, &MediaDecodeError{Reason: "not a media array", cause: err}
	}

	for i, item := range items {
		switch item.Type {
		case MediaTypeRegular, MediaTypeID, "":
		default:
			return nil, &MediaDecodeError{Reason: fmt.Sprintf("item %d has unknown type %q", i, item.Type)}
		}
	}
	return items, nil
}
