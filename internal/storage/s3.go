package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/config"
)

const maxCoverEdge = 1024

type S3CoverStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
	region    string
}

func NewS3CoverStore(cfg *config.Config) *S3CoverStore {
	client := s3.New(s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	})

	return &S3CoverStore{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: cfg.S3PublicURL,
		region:    cfg.S3Region,
	}
}

// Put decodes the upload, scales it down to at most maxCoverEdge pixels on
// the long side, re-encodes it as webp and uploads it. The returned URL is
// stable per upload (uuid-suffixed), so stale CDN caches never serve an old
// cover after a replacement.
func (s *S3CoverStore) Put(ctx context.Context, bookID uint, r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", ErrUnsupportedImage
	}

	src = scaleDown(src)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, src, &webp.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode cover: %w", err)
	}

	key := fmt.Sprintf("covers/%d-%s.webp", bookID, uuid.NewString())

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/webp"),
	})
	if err != nil {
		return "", fmt.Errorf("upload cover: %w", err)
	}

	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", s.publicURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func scaleDown(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxCoverEdge && h <= maxCoverEdge {
		return src
	}

	if w >= h {
		h = h * maxCoverEdge / w
		w = maxCoverEdge
	} else {
		w = w * maxCoverEdge / h
		h = maxCoverEdge
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

var _ CoverStore = (*S3CoverStore)(nil)
