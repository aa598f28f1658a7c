package exportsink_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ganot/interview-etl/internal/exportsink"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 5, 7, 123_000_000, time.FixedZone("CET", 3600))
	require.Equal(t, "results/ws-1/user_story-20260301T080507.123Z.csv", exportsink.Key("ws-1", "user_story", at))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	sink := exportsink.NewMemory()

	info, err := sink.Put(ctx, "results/a.csv", strings.NewReader("id\nUS-1"), "text/csv")
	require.NoError(t, err)
	require.Equal(t, int64(7), info.Size)

	body, ok := sink.Bytes("results/a.csv")
	require.True(t, ok)
	require.Equal(t, "id\nUS-1", string(body))
	require.Equal(t, []string{"results/a.csv"}, sink.Keys())

	_, err = sink.Put(ctx, "results/a.csv", strings.NewReader("x"), "text/csv")
	require.ErrorIs(t, err, exportsink.ErrExists)

	url, err := sink.PresignURL(ctx, "results/a.csv", 0)
	require.NoError(t, err)
	require.Equal(t, "memory://exports/results/a.csv", url)
}

func TestInvalidKeys(t *testing.T) {
	ctx := context.Background()
	sink := exportsink.NewMemory()

	for _, key := range []string{"", "  ", "/etc/passwd", "../up.csv", "results/../../up.csv"} {
		_, err := sink.Put(ctx, key, strings.NewReader("x"), "")
		require.ErrorIs(t, err, exportsink.ErrInvalidKey, key)
	}
}

func TestFS(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	sink, err := exportsink.NewFS(root)
	require.NoError(t, err)

	info, err := sink.Put(ctx, "results/ws/export.csv", strings.NewReader("id,priority\nUS-1,High"), "text/csv")
	require.NoError(t, err)
	require.Equal(t, int64(21), info.Size)

	data, err := os.ReadFile(filepath.Join(root, "results", "ws", "export.csv"))
	require.NoError(t, err)
	require.Equal(t, "id,priority\nUS-1,High", string(data))

	_, err = sink.Put(ctx, "results/ws/export.csv", strings.NewReader("again"), "text/csv")
	require.ErrorIs(t, err, exportsink.ErrExists)

	entries, err := os.ReadDir(filepath.Join(root, "results", "ws"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files are left behind")

	url, err := sink.PresignURL(ctx, "results/ws/export.csv", time.Minute)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "file://"))
	require.True(t, strings.HasSuffix(url, "/results/ws/export.csv"))
}

type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	status   int
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req.Method+" "+req.URL.Path)
	status := f.status
	f.mu.Unlock()
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
	}

	if status == http.StatusPreconditionFailed {
		body := `<?xml version="1.0" encoding="UTF-8"?><Error><Code>PreconditionFailed</Code><Message>At least one of the pre-conditions you specified did not hold</Message></Error>`
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{"Content-Type": {"application/xml"}},
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"ETag": {`"etag"`}},
		Request:    req,
	}, nil
}

func newS3(t *testing.T, rt http.RoundTripper, prefix string) *exportsink.S3 {
	t.Helper()
	sink, err := exportsink.NewS3(context.Background(), exportsink.S3Config{
		Bucket:          "exports",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		Prefix:          prefix,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
	})
	require.NoError(t, err)
	return sink
}

func TestS3Put(t *testing.T) {
	rt := &fakeS3{}
	sink := newS3(t, rt, "interviews")

	info, err := sink.Put(context.Background(), "results/ws/export.csv", bytes.NewReader([]byte("id\nUS-1")), "text/csv")
	require.NoError(t, err)
	require.Equal(t, "results/ws/export.csv", info.Key)
	require.Equal(t, int64(7), info.Size)
	require.Equal(t, []string{"PUT /exports/interviews/results/ws/export.csv"}, rt.requests)
}

func TestS3PutExisting(t *testing.T) {
	rt := &fakeS3{status: http.StatusPreconditionFailed}
	sink := newS3(t, rt, "")

	_, err := sink.Put(context.Background(), "results/ws/export.csv", bytes.NewReader([]byte("id")), "text/csv")
	require.ErrorIs(t, err, exportsink.ErrExists)
}

func TestS3PresignURL(t *testing.T) {
	rt := &fakeS3{}
	sink := newS3(t, rt, "")

	url, err := sink.PresignURL(context.Background(), "results/ws/export.csv", 0)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://mock.s3.local/exports/results/ws/export.csv?"), url)
	require.Contains(t, url, "X-Amz-Expires=900")
	require.Contains(t, url, "X-Amz-Signature=")
	require.Empty(t, rt.requests, "presigning makes no requests")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	sink, err := exportsink.Open(ctx, exportsink.Config{Driver: exportsink.DriverMemory})
	require.NoError(t, err)
	require.Equal(t, exportsink.DriverMemory, sink.Driver())

	sink, err = exportsink.Open(ctx, exportsink.Config{FSRoot: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, exportsink.DriverFS, sink.Driver())

	_, err = exportsink.Open(ctx, exportsink.Config{Driver: exportsink.DriverS3})
	require.Error(t, err, "s3 needs a bucket")

	_, err = exportsink.Open(ctx, exportsink.Config{Driver: "ftp"})
	require.Error(t, err)
}
