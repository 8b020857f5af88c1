package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"proxydash/core/storage"
	"proxydash/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "proxydash").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(context.Background(), m, "proxydash"))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "proxydash").Return(false, nil)
		m.On("MakeBucket", mock.Anything, "proxydash", mock.Anything).Return(nil)

		assert.NoError(t, storage.EnsureBucket(context.Background(), m, "proxydash"))
		m.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "proxydash").Return(false, errors.New("denied"))

		err := storage.EnsureBucket(context.Background(), m, "proxydash")
		assert.ErrorContains(t, err, "denied")
	})
}

func TestReadWriteObject(t *testing.T) {
	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "proxydash", "signatures.yaml", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte("version: 1"))), nil)
	m.On("PutObject", mock.Anything, "proxydash", "catalog.json", mock.Anything, int64(2), minio.PutObjectOptions{ContentType: "application/json"}).
		Return(minio.UploadInfo{}, nil)

	data, err := storage.ReadObject(context.Background(), m, "proxydash", "signatures.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "version: 1", string(data))

	err = storage.WriteObject(context.Background(), m, "proxydash", "catalog.json", []byte("[]"), "application/json")
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestReadObject_Missing(t *testing.T) {
	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "proxydash", "missing", mock.Anything).Return(nil, errors.New("no such key"))

	_, err := storage.ReadObject(context.Background(), m, "proxydash", "missing")
	assert.ErrorContains(t, err, "no such key")
}
