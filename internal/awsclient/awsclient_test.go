package awsclient

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestLoad_StaticCredentialsAndEndpoint(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := Load(context.Background(), Options{
		Endpoint:  "http://localhost:4566",
		AccessKey: "test",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Region != "ap-south-1" {
		t.Fatalf("default region wrong: %q", cfg.Region)
	}
	if aws.ToString(cfg.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("endpoint not applied: %v", cfg.BaseEndpoint)
	}
	creds, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve creds: %v", err)
	}
	if creds.AccessKeyID != "test" || creds.SecretAccessKey != "secret" {
		t.Fatalf("static creds not used: %+v", creds)
	}
}
