package artifacts

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// MinioConf configures an S3 compatible artifact bucket
type MinioConf struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// MinioStore stores artifacts as objects in a bucket
type MinioStore struct {
	client    *minio.Client
	bucket    string
	prefix    string
	urlPrefix string
}

// NewMinioStore connects to the bucket described by conf
func NewMinioStore(conf MinioConf, urlPrefix string) (*MinioStore, error) {
	if conf.Bucket == "" {
		return nil, errors.New("artifact bucket not set")
	}
	client, err := minio.New(
		conf.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
			Secure: conf.UseSSL,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not create minio client")
	}
	return &MinioStore{
		client:    client,
		bucket:    conf.Bucket,
		prefix:    conf.Prefix,
		urlPrefix: urlPrefix,
	}, nil
}

func (s *MinioStore) key(name string) string {
	return joinRef(s.prefix, name)
}

// Write implements Store
func (s *MinioStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	_, err := s.client.PutObject(
		ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "image/png",
		},
	)
	if err != nil {
		return "", errors.Wrapf(err, "could not upload artifact '%s'", name)
	}
	return joinRef(s.urlPrefix, name), nil
}

// Delete implements Store
func (s *MinioStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	return errors.Wrapf(err, "could not delete artifact '%s'", name)
}
