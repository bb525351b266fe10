package spaces

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type fakeS3 struct {
	s3iface.S3API
	puts    map[string][]byte
	types   map[string]string
	failPut bool
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("access denied")
	}
	body, _ := io.ReadAll(in.Body)
	f.puts[aws.StringValue(in.Key)] = body
	f.types[aws.StringValue(in.Key)] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func newFake() *fakeS3 {
	return &fakeS3{puts: map[string][]byte{}, types: map[string]string{}}
}

func TestUploadAndURL(t *testing.T) {
	api := newFake()
	c := NewWithAPI(api, Config{Bucket: "events", Endpoint: "https://blr1.digitaloceanspaces.com"})

	url, err := c.Upload(context.Background(), "uploads/images/a.png", []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://events.blr1.digitaloceanspaces.com/uploads/images/a.png" {
		t.Errorf("unexpected url %s", url)
	}
	if string(api.puts["uploads/images/a.png"]) != "png" || api.types["uploads/images/a.png"] != "image/png" {
		t.Errorf("object not stored as expected: %v %v", api.puts, api.types)
	}
}

func TestURLPrefersCDN(t *testing.T) {
	c := NewWithAPI(newFake(), Config{Bucket: "b", Endpoint: "e", CDNURL: "https://cdn.example.com/"})
	if got := c.URL("/uploads/x.pdf"); got != "https://cdn.example.com/uploads/x.pdf" {
		t.Errorf("unexpected cdn url %s", got)
	}
}

func TestUploadError(t *testing.T) {
	api := newFake()
	api.failPut = true
	c := NewWithAPI(api, Config{Bucket: "b", Endpoint: "e"})
	if _, err := c.Upload(context.Background(), "k", nil, "text/plain"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClientRequiresBucket(t *testing.T) {
	if _, err := NewClient(Config{Region: "blr1"}); err == nil {
		t.Fatal("expected error without bucket")
	}
}
