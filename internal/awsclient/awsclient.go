// Package awsclient builds the aws.Config shared by the DynamoDB, SNS and
// ECS clients.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

type Options struct {
	Region    string // defaults to ap-south-1
	Endpoint  string // custom endpoint, e.g. localstack
	AccessKey string // optional; default credential chain when empty
	SecretKey string
}

// Load resolves region, credentials and the optional endpoint override.
func Load(ctx context.Context, o Options) (aws.Config, error) {
	if o.Region == "" {
		o.Region = "ap-south-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" && o.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if o.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(o.Endpoint)
	}
	return cfg, nil
}
