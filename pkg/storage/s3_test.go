package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ---------------------------------------------------------------------------
// mock S3 client
// ---------------------------------------------------------------------------

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}
var errNotFound = &apiError{code: "NotFound", msg: "not found"}

// mockS3 is a thread-safe in-memory S3 backend for testing.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte

	// pageSize limits ListObjectsV2 pages when > 0.
	pageSize int

	// Optional hooks to inject errors.
	getErr    error
	putErr    error
	deleteErr error
	headErr   error
	listErr   error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, errNotFound
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	src := *in.CopySource
	_, escaped, _ := strings.Cut(src, "/")
	segs := strings.Split(escaped, "/")
	for i, seg := range segs {
		un, err := url.PathUnescape(seg)
		if err != nil {
			return nil, err
		}
		segs[i] = un
	}
	key := strings.Join(segs, "/")

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errNoSuchKey
	}
	m.objects[*in.Key] = bytes.Clone(data)
	return &s3.CopyObjectOutput{}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	prefix := aws.ToString(in.Prefix)
	delim := aws.ToString(in.Delimiter)
	after := aws.ToString(in.ContinuationToken)

	m.mu.Lock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	m.mu.Unlock()
	sort.Strings(keys)

	limit := int(aws.ToInt32(in.MaxKeys))
	if m.pageSize > 0 && (limit == 0 || m.pageSize < limit) {
		limit = m.pageSize
	}

	out := &s3.ListObjectsV2Output{}
	seenPrefix := make(map[string]bool)
	n := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) || k <= after {
			continue
		}
		if limit > 0 && n >= limit {
			out.IsTruncated = aws.Bool(true)
			out.NextContinuationToken = aws.String(after)
			break
		}
		rest := k[len(prefix):]
		if delim != "" {
			if i := strings.Index(rest, delim); i >= 0 {
				cp := prefix + rest[:i+len(delim)]
				if !seenPrefix[cp] {
					seenPrefix[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, s3types.CommonPrefix{Prefix: aws.String(cp)})
					n++
				}
				after = k
				continue
			}
		}
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
		after = k
		n++
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// S3Store tests
// ---------------------------------------------------------------------------

func newTestS3(t *testing.T) (*S3Store, *mockS3) {
	t.Helper()
	mock := newMockS3()
	store := NewS3(mock, "test-bucket", "")
	return store, mock
}

func TestS3ReadNotExist(t *testing.T) {
	store, _ := newTestS3(t)

	_, err := store.Read(context.Background(), "missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestS3ReadOtherError(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("network timeout")
	store := NewS3(mock, "bucket", "pfx")

	_, err := store.Read(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Fatal("should not be ErrNotExist for generic errors")
	}
}

func TestS3ExistsOtherError(t *testing.T) {
	mock := newMockS3()
	mock.headErr = errors.New("network failure")
	store := NewS3(mock, "bucket", "")

	_, err := store.Exists(context.Background(), "x")
	if err == nil || err.Error() != "network failure" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestS3ExistsListError(t *testing.T) {
	mock := newMockS3()
	mock.listErr = errors.New("list denied")
	store := NewS3(mock, "bucket", "")

	_, err := store.Exists(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error from the directory listing")
	}
}

func TestS3DeleteError(t *testing.T) {
	mock := newMockS3()
	mock.deleteErr = errors.New("access denied")
	store := NewS3(mock, "bucket", "")

	if err := store.Delete(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestS3WriteUploadError(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("upload failed")
	store := NewS3(mock, "bucket", "")

	w, err := store.Write(context.Background(), "obj")
	if err != nil {
		t.Fatal(err)
	}
	// The pipe may or may not accept data depending on how fast the
	// goroutine fails.
	io.WriteString(w, "data")
	err = w.Close()
	if err == nil || err.Error() != "upload failed" {
		t.Fatalf("expected upload error from Close, got %v", err)
	}
}

func TestS3WriteAtomicError(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("upload failed")
	store := NewS3(mock, "bucket", "")

	err := store.WriteAtomic(context.Background(), "rec.json", []byte("{}"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestS3KeyPrefix(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "bucket", "my/prefix/")
	ctx := context.Background()

	if err := store.WriteAtomic(ctx, "repo/file.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	mock.mu.Lock()
	_, ok := mock.objects["my/prefix/repo/file.json"]
	mock.mu.Unlock()
	if !ok {
		t.Fatal("expected key with prefix my/prefix/repo/file.json")
	}

	names, err := store.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "repo" {
		t.Fatalf("List(root) = %v", names)
	}
	kind, err := store.Exists(ctx, "repo")
	if err != nil {
		t.Fatal(err)
	}
	if kind != Directory {
		t.Fatalf("Exists(repo) = %v", kind)
	}
}

func TestS3ListPaginates(t *testing.T) {
	store, mock := newTestS3(t)
	mock.pageSize = 2
	ctx := context.Background()

	for _, k := range []string{"d/a.json", "d/b.json", "d/c.json", "d/sub/x", "d/z.json"} {
		mock.objects[k] = []byte("1")
	}
	names, err := store.List(ctx, "d")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.json", "b.json", "c.json", "sub", "z.json"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("List = %v, want %v", names, want)
	}
}

func TestS3RenameEscapesKey(t *testing.T) {
	store, mock := newTestS3(t)
	ctx := context.Background()

	mock.objects["d/with space+plus.json"] = []byte("v")
	if err := store.Rename(ctx, "d/with space+plus.json", "d/dst.json"); err != nil {
		t.Fatal(err)
	}
	if _, ok := mock.objects["d/dst.json"]; !ok {
		t.Fatal("destination missing")
	}
	if _, ok := mock.objects["d/with space+plus.json"]; ok {
		t.Fatal("source should be deleted")
	}
}

func TestS3RenameMissing(t *testing.T) {
	store, _ := newTestS3(t)
	err := store.Rename(context.Background(), "nope", "dst")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Config{
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "AKID",
		SecretAccessKey: "secret",
		PathStyle:       true,
	})
	opts := c.Options()
	if opts.Region != "us-east-1" || !opts.UsePathStyle {
		t.Fatalf("unexpected options: region=%q pathStyle=%v", opts.Region, opts.UsePathStyle)
	}
	if aws.ToString(opts.BaseEndpoint) != "http://127.0.0.1:9000" {
		t.Fatalf("endpoint = %q", aws.ToString(opts.BaseEndpoint))
	}
	creds, err := opts.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKID" {
		t.Fatalf("access key = %q", creds.AccessKeyID)
	}
}

func TestIsS3NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"NoSuchKey", errNoSuchKey, true},
		{"NotFound", errNotFound, true},
		{"other api error", &apiError{code: "AccessDenied", msg: "denied"}, false},
		{"plain error", errors.New("timeout"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isS3NotFound(tt.err); got != tt.want {
				t.Fatalf("isS3NotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestS3ListEmptyPrefix(t *testing.T) {
	store, _ := newTestS3(t)
	ctx := context.Background()

	names, err := store.List(ctx, "apps")
	if err != nil {
		t.Fatal(err)
	}
	if names == nil || len(names) != 0 {
		t.Fatalf("List(apps) = %#v, want empty slice", names)
	}

	if err := store.WriteAtomic(ctx, "apps/a.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "apps/a.json"); err != nil {
		t.Fatal(err)
	}
	names, err = store.List(ctx, "apps")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("List after delete = %v, want empty", names)
	}
}

func TestS3ListError(t *testing.T) {
	mock := newMockS3()
	mock.listErr = errors.New("list denied")
	store := NewS3(mock, "bucket", "")

	if _, err := store.List(context.Background(), "apps"); err == nil {
		t.Fatal("expected list error")
	}
}
