// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Config carries the Cloudflare R2 credentials and bucket.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

var r2Client *s3.Client
var r2Bucket string
var cdnBaseURL string

func InitR2(rc R2Config) error {
	r2Bucket = rc.Bucket
	cdnBaseURL = strings.TrimRight(rc.CDNBaseURL, "/")
	if cdnBaseURL == "" {
		cdnBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", rc.AccountID, rc.Bucket)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			rc.AccessKeyID, rc.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", rc.AccountID)
	r2Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return nil
}

// R2Ready reports whether InitR2 has run.
func R2Ready() bool { return r2Client != nil }

// ListR2Keys returns the base names of every object under prefix.
func ListR2Keys(ctx context.Context, prefix string) ([]string, error) {
	if r2Client == nil {
		return nil, fmt.Errorf("R2 client not initialized")
	}
	var names []string
	p := s3.NewListObjectsV2Paginator(r2Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r2Bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list R2 objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

// UploadBytesToR2 stores body under key and returns its public URL.
func UploadBytesToR2(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if r2Client == nil {
		return "", fmt.Errorf("R2 client not initialized")
	}
	_, err := r2Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r2Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return R2PublicURL(key), nil
}

// R2PublicURL is the CDN URL of key.
func R2PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", cdnBaseURL, strings.TrimLeft(key, "/"))
}
