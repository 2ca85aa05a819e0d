// Package storage archives result snapshots to S3-compatible object storage.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Saul-Punybz/radar/internal/config"
	"github.com/Saul-Punybz/radar/internal/export"
)

// ErrNotConfigured means no S3 endpoint was set.
var ErrNotConfigured = errors.New("storage: not configured")

// objectPutter is the part of the S3 API the client uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client wraps an S3-compatible object storage client.
type Client struct {
	s3     objectPutter
	bucket string
	now    func() time.Time
}

// SnapshotMeta describes an archived snapshot. It is stored uncompressed
// next to the data files.
type SnapshotMeta struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	CapturedAt time.Time `json:"captured_at"`
	Results    int       `json:"results"`
	CSVHash    string    `json:"csv_sha256"`
	JSONHash   string    `json:"json_sha256"`
	Prefix     string    `json:"prefix"`
}

// NewClient creates a storage client for any S3-compatible endpoint. With
// no endpoint configured the client is returned disabled.
func NewClient(ctx context.Context, cfg config.S3Config) (*Client, error) {
	if cfg.Endpoint == "" {
		slog.Warn("storage: S3 endpoint not configured, snapshot archiving disabled")
		return &Client{bucket: cfg.Bucket, now: time.Now}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = &cfg.Endpoint
		o.UsePathStyle = true
	})

	return &Client{s3: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// Configured returns true if the client can upload.
func (c *Client) Configured() bool {
	return c != nil && c.s3 != nil
}

// StoreSnapshot uploads rows as gzipped CSV and JSON plus a meta.json with
// their SHA-256 hashes under snapshots/<source>/<date>/<id>/. source names
// the producer, e.g. "dashboard" or "worker".
func (c *Client) StoreSnapshot(ctx context.Context, source string, rows []export.Row) (SnapshotMeta, error) {
	if !c.Configured() {
		return SnapshotMeta{}, ErrNotConfigured
	}

	var csvBuf, jsonBuf bytes.Buffer
	if err := export.WriteCSV(&csvBuf, rows); err != nil {
		return SnapshotMeta{}, fmt.Errorf("storage: %w", err)
	}
	if err := export.WriteJSON(&jsonBuf, rows); err != nil {
		return SnapshotMeta{}, fmt.Errorf("storage: %w", err)
	}

	now := c.now().UTC()
	meta := SnapshotMeta{
		ID:         uuid.New(),
		Source:     source,
		CapturedAt: now,
		Results:    len(rows),
		CSVHash:    sha256sum(csvBuf.Bytes()),
		JSONHash:   sha256sum(jsonBuf.Bytes()),
	}
	meta.Prefix = fmt.Sprintf("snapshots/%s/%s", source, now.Format("2006/01/02"))
	meta.Prefix += "/" + meta.ID.String()

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("storage: marshal meta: %w", err)
	}

	csvGz, err := gzipCompress(csvBuf.Bytes())
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("storage: compress csv: %w", err)
	}
	jsonGz, err := gzipCompress(jsonBuf.Bytes())
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("storage: compress json: %w", err)
	}

	uploads := []struct {
		key         string
		body        []byte
		contentType string
	}{
		{meta.Prefix + "/results.csv.gz", csvGz, "text/csv"},
		{meta.Prefix + "/results.json.gz", jsonGz, "application/json"},
		// Meta goes last so a present meta.json implies complete data files.
		{meta.Prefix + "/meta.json", metaJSON, "application/json"},
	}
	for _, u := range uploads {
		in := &s3.PutObjectInput{
			Bucket:      &c.bucket,
			Key:         &u.key,
			Body:        bytes.NewReader(u.body),
			ContentType: &u.contentType,
		}
		if u.key != meta.Prefix+"/meta.json" {
			enc := "gzip"
			in.ContentEncoding = &enc
		}
		if _, err := c.s3.PutObject(ctx, in); err != nil {
			return SnapshotMeta{}, fmt.Errorf("storage: upload %s: %w", u.key, err)
		}
		slog.Debug("storage: uploaded", "key", u.key, "size", len(u.body))
	}

	slog.Info("storage: snapshot archived", "prefix", meta.Prefix, "results", meta.Results)
	return meta, nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
