package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pulsechat/common"
)

// S3Host stores media in an S3-compatible bucket.
type S3Host struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Host builds a host for the bucket. An empty endpoint uses AWS proper;
// a custom endpoint targets S3-compatible storage such as MinIO.
func NewS3Host(ctx context.Context, region, accessKey, secretKey, bucket, endpoint string) (*S3Host, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	if endpoint != "" {
		baseURL = strings.TrimSuffix(endpoint, "/") + "/" + bucket
	}

	return &S3Host{client: client, bucket: bucket, baseURL: baseURL}, nil
}

// Upload decodes an inline data URL and stores it under folder. Payloads
// that are not inline are returned unchanged: they are already hosted
// somewhere.
func (h *S3Host) Upload(ctx context.Context, payload, folder string) (string, error) {
	if !IsInline(payload) {
		return payload, nil
	}

	contentType, data, err := decodeDataURL(payload)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), extensionFor(contentType))
	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading media: %w", err)
	}

	return h.baseURL + "/" + key, nil
}

// Delete removes an object by its public URL. URLs not served by this host
// are ignored.
func (h *S3Host) Delete(ctx context.Context, ref string) error {
	if !h.Hosted(ref) {
		return nil
	}
	key := strings.TrimPrefix(strings.TrimPrefix(ref, h.baseURL), "/")
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	return nil
}

func (h *S3Host) Hosted(ref string) bool {
	return strings.HasPrefix(ref, h.baseURL+"/")
}

// decodeDataURL splits "data:<type>;base64,<data>" into its content type
// and decoded bytes.
func decodeDataURL(payload string) (string, []byte, error) {
	rest := strings.TrimPrefix(payload, "data:")
	meta, encoded, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, fmt.Errorf("%w: malformed data url", common.ErrValidationFailed)
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid base64 payload", common.ErrValidationFailed)
	}
	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav":
		return ".wav"
	default:
		return ""
	}
}
