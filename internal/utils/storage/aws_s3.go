package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
)

type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint targets an S3-compatible server (MinIO, LocalStack) with
	// path-style addressing when set.
	Endpoint string
	Prefix   string
}

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type awsS3Store struct {
	client s3API
	bucket string
	prefix string
}

func NewAwsS3(ctx context.Context, cfg S3Config) (EvidenceStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newAwsS3Store(client, cfg.Bucket, cfg.Prefix), nil
}

func newAwsS3Store(client s3API, bucket, prefix string) *awsS3Store {
	return &awsS3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *awsS3Store) objectKey(ref string) string {
	if s.prefix == "" {
		return ref
	}
	return s.prefix + "/" + ref
}

func (s *awsS3Store) Store(ctx context.Context, class Class, stem, name string, data []byte) (Artifact, error) {
	ext, err := CheckExtension(class, name)
	if err != nil {
		return Artifact{}, err
	}

	ref := newRef(stem, ext)
	sum := sha256.Sum256(data)

	// S3 rejects the upload if the bytes it received hash differently.
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(s.bucket),
		Key:            aws.String(s.objectKey(ref)),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ContentType:    aws.String(mimetype.Detect(data).String()),
		ChecksumSHA256: aws.String(base64.StdEncoding.EncodeToString(sum[:])),
		// never replace an existing artifact
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return Artifact{}, writeFailed(ref, err)
	}

	return Artifact{
		Ref:    ref,
		Digest: digestOf(data),
		Size:   len(data),
	}, nil
}

func (s *awsS3Store) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if !validRef(ref) {
		return nil, notFound(ref)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, notFound(ref)
		}
		return nil, fmt.Errorf("get object %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", ref, err)
	}
	return data, nil
}

func (s *awsS3Store) Digest(ctx context.Context, ref string) (string, error) {
	data, err := s.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	return digestOf(data), nil
}

func (s *awsS3Store) Remove(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return notFound(ref)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
	})
	return err
}
