// Package motivation turns stored motivation track references into URLs the
// mobile client can stream.
package motivation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidTrack is returned for references that cannot be resolved.
var ErrInvalidTrack = errors.New("invalid motivation track")

const s3Scheme = "s3://"

// Track identifies an object in S3.
type Track struct {
	Bucket string
	Key    string
}

// ParseTrack splits an s3://bucket/key reference.
func ParseTrack(ref string) (Track, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, s3Scheme) {
		return Track{}, fmt.Errorf("%w: %q is not an s3 reference", ErrInvalidTrack, ref)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return Track{}, fmt.Errorf("%w: %q must look like s3://bucket/key", ErrInvalidTrack, ref)
	}
	return Track{Bucket: bucket, Key: key}, nil
}

// Presigner is satisfied by *s3.PresignClient.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Link is a resolved, possibly expiring, URL.
type Link struct {
	Track     string     `json:"track"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Resolver presigns s3 references. Other http(s) references pass through.
type Resolver struct {
	presigner Presigner
	ttl       time.Duration
	now       func() time.Time
}

// NewResolver constructs a Resolver issuing URLs valid for ttl.
func NewResolver(presigner Presigner, ttl time.Duration) *Resolver {
	return &Resolver{presigner: presigner, ttl: ttl, now: time.Now}
}

// Resolve returns a streamable URL for ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Link, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Link{}, fmt.Errorf("%w: empty reference", ErrInvalidTrack)
	}
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return Link{Track: ref, URL: ref}, nil
	}

	track, err := ParseTrack(ref)
	if err != nil {
		return Link{}, err
	}
	if r.presigner == nil {
		return Link{}, errors.New("motivation track presigning is not configured")
	}

	issued := r.now()
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(track.Bucket),
		Key:    aws.String(track.Key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return Link{}, fmt.Errorf("presign %s: %w", ref, err)
	}

	expires := issued.Add(r.ttl).UTC()
	return Link{Track: ref, URL: req.URL, ExpiresAt: &expires}, nil
}
