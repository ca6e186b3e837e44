package storage

import (
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/jhifarskiy/eatune/internal/config"
)

// Client is the bucket-level view the ingester works with: raw uploads
// land in the ingest bucket, processed audio lives in the prod bucket
// behind the public CDN base URL.
type Client struct {
	backend      Provider
	bucketProd   string
	bucketIngest string
	publicBase   string
}

func New(cfg *config.Config) *Client {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.B2.KeyID, cfg.B2.AppKey, ""),
		Endpoint:         aws.String(cfg.B2.Endpoint),
		Region:           aws.String(cfg.B2.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	sess := session.Must(session.NewSession(s3Config))

	return &Client{
		backend:      NewS3Provider(sess),
		bucketProd:   cfg.B2.BucketProd,
		bucketIngest: cfg.B2.BucketIngest,
		publicBase:   strings.TrimSuffix(cfg.B2.PublicBase, "/"),
	}
}

func (c *Client) ListIngest() ([]string, error) {
	return c.backend.List(c.bucketIngest, "")
}

func (c *Client) DownloadIngest(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketIngest, key)
}

func (c *Client) UploadProd(key string, body io.ReadSeeker, contentType string) error {
	return c.backend.Put(c.bucketProd, key, body, contentType)
}

func (c *Client) DeleteIngest(key string) error {
	return c.backend.Delete(c.bucketIngest, key)
}

// PublicURL is the address patrons' players stream the track from.
func (c *Client) PublicURL(key string) string {
	return c.publicBase + "/" + key
}
