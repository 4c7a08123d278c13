package motivation

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func TestParseTrack(t *testing.T) {
	track, err := ParseTrack("s3://riserite-tracks/morning/rise.mp3")
	require.NoError(t, err)
	require.Equal(t, "riserite-tracks", track.Bucket)
	require.Equal(t, "morning/rise.mp3", track.Key)

	for _, bad := range []string{"", "rise.mp3", "s3://", "s3://bucket", "s3:///key"} {
		_, err := ParseTrack(bad)
		require.ErrorIs(t, err, ErrInvalidTrack, bad)
	}
}

func newOfflinePresigner() *s3.PresignClient {
	client := s3.New(s3.Options{
		Region:      "us-east-2",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", "")),
	})
	return s3.NewPresignClient(client)
}

func TestResolvePresignsS3References(t *testing.T) {
	resolver := NewResolver(newOfflinePresigner(), 15*time.Minute)
	issued := time.Date(2026, time.October, 18, 6, 0, 0, 0, time.UTC)
	resolver.now = func() time.Time { return issued }

	link, err := resolver.Resolve(context.Background(), "s3://riserite-tracks/morning/rise.mp3")
	require.NoError(t, err)
	require.Equal(t, "s3://riserite-tracks/morning/rise.mp3", link.Track)
	require.NotNil(t, link.ExpiresAt)
	require.Equal(t, issued.Add(15*time.Minute), *link.ExpiresAt)

	parsed, err := url.Parse(link.URL)
	require.NoError(t, err)
	require.Equal(t, "https", parsed.Scheme)
	require.Contains(t, parsed.Host+parsed.Path, "riserite-tracks")
	require.Contains(t, parsed.Path, "morning/rise.mp3")
	require.Equal(t, "900", parsed.Query().Get("X-Amz-Expires"))
}

func TestResolvePassesThroughHTTPReferences(t *testing.T) {
	resolver := NewResolver(nil, time.Minute)

	link, err := resolver.Resolve(context.Background(), "https://cdn.example.com/rise.mp3")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/rise.mp3", link.URL)
	require.Nil(t, link.ExpiresAt)

	_, err = resolver.Resolve(context.Background(), "ftp://nope")
	require.ErrorIs(t, err, ErrInvalidTrack)
}
