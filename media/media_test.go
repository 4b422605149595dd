package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pulsechat/common"
)

func TestIsInline(t *testing.T) {
	t.Parallel()

	require.True(t, IsInline("data:image/png;base64,iVBORw0KGgo="))
	require.False(t, IsInline("https://cdn.example.com/a.png"))
	require.False(t, IsInline("data:image/png,rawpixels"))
	require.False(t, IsInline(""))
}

func TestDecodeDataURL(t *testing.T) {
	t.Parallel()

	contentType, data, err := decodeDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)
	require.Equal(t, []byte("hello"), data)

	_, _, err = decodeDataURL("data:image/png;base64")
	require.ErrorIs(t, err, common.ErrValidationFailed)

	_, _, err = decodeDataURL("data:image/png;base64,%%%")
	require.ErrorIs(t, err, common.ErrValidationFailed)
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	var h Disabled

	_, err := h.Upload(context.Background(), "data:image/png;base64,aGVsbG8=", "avatars")
	require.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	require.ErrorIs(t, h.Delete(context.Background(), "anything"), common.ErrUpstreamUnavailable)
	require.False(t, h.Hosted("https://bucket.s3.us-east-1.amazonaws.com/a.png"))
}

func TestHosted(t *testing.T) {
	t.Parallel()

	h := &S3Host{bucket: "pulse", baseURL: "https://pulse.s3.us-east-1.amazonaws.com"}

	require.True(t, h.Hosted("https://pulse.s3.us-east-1.amazonaws.com/avatars/x.png"))
	require.False(t, h.Hosted("https://other.s3.us-east-1.amazonaws.com/avatars/x.png"))
	require.False(t, h.Hosted("data:image/png;base64,aGVsbG8="))
}
