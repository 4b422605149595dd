// Package media uploads user content (avatars, message attachments, story
// media) to object storage and serves back public URLs. When storage is not
// configured the service still runs; callers fall back to the original
// inline payload.
package media

import (
	"context"
	"strings"

	"pulsechat/common"
)

// Host stores media payloads and returns a reference usable as a URL.
type Host interface {
	// Upload stores the payload under the folder and returns its public URL.
	// The payload is either a data: URL or an already-hosted URL.
	Upload(ctx context.Context, payload, folder string) (string, error)
	// Delete removes a previously uploaded object. Unknown refs are ignored.
	Delete(ctx context.Context, ref string) error
	// Hosted reports whether the ref points at this host's storage.
	Hosted(ref string) bool
}

// IsInline reports whether the payload is a base64 data URL that needs
// uploading, as opposed to an already-hosted URL.
func IsInline(payload string) bool {
	return strings.HasPrefix(payload, "data:") && strings.Contains(payload, "base64,")
}

// Disabled is the Host used when no object storage is configured.
// Every operation fails with ErrUpstreamUnavailable so callers can keep
// the original payload instead.
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, payload, folder string) (string, error) {
	return "", common.ErrUpstreamUnavailable
}

func (Disabled) Delete(ctx context.Context, ref string) error {
	return common.ErrUpstreamUnavailable
}

func (Disabled) Hosted(ref string) bool { return false }
