package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/marcuszucareli/house-price-app/internal/config"
)

type S3FileStorage struct {
	client *s3.Client
	cfg    *config.S3Config
}

func NewS3FileStorage(cfg *config.Config) (*S3FileStorage, error) {
	if cfg.S3 == nil {
		return nil, fmt.Errorf("s3 config is not set")
	}

	credentialsProvider := credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")
	awsConfig, err := awsConfig.LoadDefaultConfig(
		context.TODO(),
		awsConfig.WithRegion(cfg.S3.Region),
		awsConfig.WithCredentialsProvider(credentialsProvider),
	)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.S3.EndpointUrl != "" {
			o.BaseEndpoint = &cfg.S3.EndpointUrl
		}
	})

	return &S3FileStorage{
		client: s3Client,
		cfg:    cfg.S3,
	}, nil
}

func (s *S3FileStorage) StoreModel(id string, srcDir string) (string, error) {
	prefix := s.keyPrefix(id)

	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		key := prefix + "/" + filepath.ToSlash(relPath)
		mtype := mimetype.Detect(content).String()

		input := s3.PutObjectInput{
			Key:         &key,
			ContentType: &mtype,
			Bucket:      &s.cfg.Bucket,
			Body:        bytes.NewReader(content),
		}
		_, err = s.client.PutObject(context.TODO(), &input)
		return err
	})
	if err != nil {
		return "", err
	}

	os.RemoveAll(srcDir)

	if s.cfg.PublicUrl != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.cfg.PublicUrl, "/"), prefix), nil
	}

	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, prefix), nil
}

func (s *S3FileStorage) ModelExists(id string) (bool, error) {
	prefix := s.keyPrefix(id) + "/"
	maxKeys := int32(1)

	output, err := s.client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket:  &s.cfg.Bucket,
		Prefix:  &prefix,
		MaxKeys: &maxKeys,
	})
	if err != nil {
		return false, err
	}

	return len(output.Contents) > 0, nil
}

func (s *S3FileStorage) keyPrefix(id string) string {
	folder := strings.Trim(s.cfg.Folder, "/")
	if folder == "" {
		return id
	}

	return folder + "/" + id
}
