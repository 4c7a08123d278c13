// Package awsclient builds AWS SDK configuration shared by the DynamoDB store
// and the motivation track presigner.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Settings carries the AWS values read from service configuration.
type Settings struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// DynamoEndpoint points the DynamoDB client at a local emulator when set.
	DynamoEndpoint string
}

// Load resolves an aws.Config. Static credentials are used only when both keys
// are present; otherwise the SDK default chain applies.
func Load(ctx context.Context, s Settings) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.Region),
	}
	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewDynamoClient returns a DynamoDB client honouring the endpoint override.
func NewDynamoClient(cfg aws.Config, s Settings) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(s.DynamoEndpoint)
		}
	})
}

// NewPresignClient returns an S3 presigner for the configured region.
func NewPresignClient(cfg aws.Config) *s3.PresignClient {
	return s3.NewPresignClient(s3.NewFromConfig(cfg))
}
