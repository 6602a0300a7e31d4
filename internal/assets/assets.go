// Package assets abstracts the external image host. The core only stores
// the URL strings the host returns; upload and delete are collaborator
// concerns behind the Uploader interface.
package assets

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidAssetURL = errors.New("invalid asset url")

type Uploader interface {
	// Upload stores the binary content and returns the hosted URL.
	Upload(ctx context.Context, content []byte) (string, error)
	// Delete removes an asset by the public id derived from its URL.
	Delete(ctx context.Context, publicID string) error
}

// PublicIDFromURL derives the host-side identifier from a hosted asset
// URL: the last path segment with its extension stripped.
// "https://host/demo/image/upload/v1/folder/abc123.jpg" -> "abc123".
func PublicIDFromURL(url string) (string, error) {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return "", ErrInvalidAssetURL
	}

	segment := trimmed[idx+1:]
	if dot := strings.LastIndex(segment, "."); dot > 0 {
		segment = segment[:dot]
	}
	if segment == "" {
		return "", ErrInvalidAssetURL
	}

	return segment, nil
}
