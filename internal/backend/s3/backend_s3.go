// Copyright (c) 2026 The BallotResearch Authors.
// SPDX-License-Identifier: Apache-2.0

// Package s3 stores cache entries as objects in an S3 bucket so several
// machines can share researched ballots and profiles.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	awsx "github.com/normalee1993/BallotResearch/internal/aws"
	"github.com/normalee1993/BallotResearch/internal/cache"
	"github.com/normalee1993/BallotResearch/internal/cacheutil"
)

// metaLastUpdated carries the entry stamp as epoch milliseconds.
const metaLastUpdated = "last-updated"

// API is the subset of the S3 client the backend uses.
type API interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3v2.ListObjectsV2Input, optFns ...func(*s3v2.Options)) (*s3v2.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3v2.DeleteObjectsInput, optFns ...func(*s3v2.Options)) (*s3v2.DeleteObjectsOutput, error)
}

type BackendS3 struct {
	client API
	bucket string
	prefix string
}

var _ cache.Backend = (*BackendS3)(nil)

type options struct {
	prefix   string
	region   string
	profile  string
	endpoint string
	client   API
}

type Option func(*options)

// WithPrefix places every object beneath prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithEndpoint targets an S3-compatible server instead of AWS.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithClient bypasses AWS config loading.
func WithClient(client API) Option {
	return func(o *options) { o.client = client }
}

// NewBackendS3 returns a backend writing to bucket.
func NewBackendS3(ctx context.Context, bucket string, opts ...Option) (*BackendS3, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		cfg, err := awsx.LoadAWSConfig(ctx, awsx.WithRegion(o.region), awsx.WithProfile(o.profile))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = awsx.NewS3(cfg, awsx.WithS3Endpoint(o.endpoint))
	}

	log.WithFields(log.Fields{"bucket": bucket, "prefix": o.prefix}).Debug("s3 cache")
	return &BackendS3{client: client, bucket: bucket, prefix: o.prefix}, nil
}

func (be *BackendS3) nsPrefix(ns cache.Namespace) string {
	return path.Join(be.prefix, string(ns)) + "/"
}

func (be *BackendS3) objectKey(ns cache.Namespace, key string) string {
	return be.nsPrefix(ns) + cacheutil.EncodeKey(key)
}

func (be *BackendS3) Read(ctx context.Context, ns cache.Namespace, key string) (*cache.Entry, bool, error) {
	out, err := be.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(be.bucket),
		Key:    awsv2.String(be.objectKey(ns, key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	e := &cache.Entry{Key: key, Data: data}
	if ms, err := strconv.ParseInt(out.Metadata[metaLastUpdated], 10, 64); err == nil {
		e.LastUpdated = time.UnixMilli(ms)
	} else if out.LastModified != nil {
		e.LastUpdated = *out.LastModified
	}
	return e, true, nil
}

func (be *BackendS3) Write(ctx context.Context, ns cache.Namespace, key string, e cache.Entry) error {
	updated := e.LastUpdated
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := be.client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(be.bucket),
		Key:         awsv2.String(be.objectKey(ns, key)),
		Body:        bytes.NewReader(e.Data),
		ContentType: awsv2.String("application/json"),
		Metadata:    map[string]string{metaLastUpdated: strconv.FormatInt(updated.UnixMilli(), 10)},
	})
	if err != nil {
		return fmt.Errorf("failed to put S3 object: %w", err)
	}
	return nil
}

// RemoveNamespace deletes every object under the namespace prefix, one
// listing page at a time.
func (be *BackendS3) RemoveNamespace(ctx context.Context, ns cache.Namespace) error {
	pager := s3v2.NewListObjectsV2Paginator(be.client, &s3v2.ListObjectsV2Input{
		Bucket: awsv2.String(be.bucket),
		Prefix: awsv2.String(be.nsPrefix(ns)),
	})

	removed := 0
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list S3 objects: %w", err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		out, err := be.client.DeleteObjects(ctx, &s3v2.DeleteObjectsInput{
			Bucket: awsv2.String(be.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: awsv2.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete S3 objects: %w", err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("failed to delete %d S3 objects, first %s: %s",
				len(out.Errors), awsv2.ToString(e.Key), awsv2.ToString(e.Message))
		}
		removed += len(ids)
	}

	log.Debugf("removed %d objects from %s", removed, be.nsPrefix(ns))
	return nil
}

func (be *BackendS3) Close() error { return nil }
