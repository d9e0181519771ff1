package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_PutThenGet(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3StorageWithClient(fake, "bucket")
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, "a.json", "application/json", []byte(`{"x":1}`)))

	body, err := store.GetObject(ctx, "a.json")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(data))

	_, err = store.GetObject(ctx, "missing.json")
	assert.Error(t, err)
}

func TestS3Storage_FeedsObjectCatalogSource(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{
		"bucket/catalog.json": []byte(`[{"id":"p1","title":"Lemon","shop":"shop1","tiers":[{"label":"10G","price":"100"}]}]`),
	}}
	store := NewS3StorageWithClient(fake, "bucket")

	cat, err := catalog.Load(context.Background(), catalog.ObjectSource{Store: store, Key: "catalog.json"})
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
	assert.NotNil(t, cat.Find("p1"))
}
