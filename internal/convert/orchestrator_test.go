package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/codebuildervaibhav/video-converter/internal/storage"
	"github.com/codebuildervaibhav/video-converter/internal/types"
)

// spyStore is an in-memory ObjectStore that counts calls and can be told to
// fail at specific operations.
type spyStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	calls        int
	putErr       error
	failPutAfter int // fail Put once this many puts have succeeded; 0 disables
	puts         int
	dropOnFetch  bool // pretend the object vanished between upload and download
}

func newSpyStore() *spyStore {
	return &spyStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func objKey(bucket, key string) string { return bucket + "/" + key }

func (s *spyStore) Put(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.putErr != nil {
		return s.putErr
	}
	if s.failPutAfter > 0 && s.puts >= s.failPutAfter {
		return errors.New("store write refused")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[objKey(bucket, key)] = data
	s.contentTypes[objKey(bucket, key)] = contentType
	s.puts++
	return nil
}

func (s *spyStore) Download(ctx context.Context, bucket, key, localPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.dropOnFetch {
		return storage.ErrObjectNotFound
	}
	data, ok := s.objects[objKey(bucket, key)]
	if !ok {
		return storage.ErrObjectNotFound
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0644)
}

func (s *spyStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	_, ok := s.objects[objKey(bucket, key)]
	return ok, nil
}

func (s *spyStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	data, ok := s.objects[objKey(bucket, key)]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// fakeTranscoder simulates the external ffmpeg binary.
type fakeTranscoder struct {
	fail  bool
	calls int
}

func (f *fakeTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	f.calls++
	if f.fail {
		return errors.New("ffmpeg failed: Invalid data found when processing input")
	}
	if _, err := os.Stat(inputPath); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte("converted-bytes"), 0644)
}

func newTestOrchestrator(t *testing.T, store *spyStore, tc Transcoder) (*Orchestrator, string) {
	t.Helper()
	scratch := t.TempDir()
	return NewOrchestrator(store, tc, nil, "in-bucket", "out-bucket", scratch), scratch
}

func mustBeEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("scratch dir not empty: %v", names)
	}
}

func TestConvertSuccess(t *testing.T) {
	store := newSpyStore()
	tc := &fakeTranscoder{}
	orch, scratch := newTestOrchestrator(t, store, tc)

	identifier, err := orch.Convert(context.Background(), Request{
		Filename:     "clip.mp4",
		ContentType:  "video/mp4",
		Body:         strings.NewReader("source-bytes"),
		TargetFormat: "mov",
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if !strings.HasSuffix(identifier, "_clip.mov") {
		t.Errorf("identifier = %q, want *_clip.mov", identifier)
	}

	outputKey := objKey("out-bucket", "converted/"+identifier)
	if got := string(store.objects[outputKey]); got != "converted-bytes" {
		t.Errorf("output object = %q, want converted-bytes", got)
	}
	if ct := store.contentTypes[outputKey]; ct != "video/quicktime" {
		t.Errorf("output content type = %q, want video/quicktime", ct)
	}

	var uploadKey string
	for k := range store.objects {
		if strings.HasPrefix(k, "in-bucket/uploads/") {
			uploadKey = k
		}
	}
	if uploadKey == "" {
		t.Error("no input object written under in-bucket/uploads/")
	} else if got := string(store.objects[uploadKey]); got != "source-bytes" {
		t.Errorf("input object = %q, want source-bytes", got)
	}

	mustBeEmptyDir(t, scratch)
}

// TestConvertNoContentTypeOverride checks that formats outside the override
// map are stored with an empty content type.
func TestConvertNoContentTypeOverride(t *testing.T) {
	store := newSpyStore()
	orch, _ := newTestOrchestrator(t, store, &fakeTranscoder{})

	identifier, err := orch.Convert(context.Background(), Request{
		Filename:     "clip.avi",
		Body:         strings.NewReader("source"),
		TargetFormat: "mp4",
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if ct := store.contentTypes[objKey("out-bucket", "converted/"+identifier)]; ct != "" {
		t.Errorf("content type = %q, want empty override", ct)
	}
}

func TestConvertMissingFormat(t *testing.T) {
	store := newSpyStore()
	orch, _ := newTestOrchestrator(t, store, &fakeTranscoder{})

	_, err := orch.Convert(context.Background(), Request{
		Filename: "clip.mp4",
		Body:     strings.NewReader("source"),
	})

	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Convert() error = %v, want ValidationError", err)
	}
	if store.calls != 0 {
		t.Errorf("store calls = %d, want 0 before validation passes", store.calls)
	}
}

func TestConvertUnknownFormat(t *testing.T) {
	store := newSpyStore()
	orch, _ := newTestOrchestrator(t, store, &fakeTranscoder{})

	_, err := orch.Convert(context.Background(), Request{
		Filename:     "clip.mp4",
		Body:         strings.NewReader("source"),
		TargetFormat: "exe",
	})

	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Convert() error = %v, want ValidationError", err)
	}
	if store.calls != 0 {
		t.Errorf("store calls = %d, want 0 for rejected format", store.calls)
	}
}

func TestConvertMissingFile(t *testing.T) {
	store := newSpyStore()
	orch, _ := newTestOrchestrator(t, store, &fakeTranscoder{})

	_, err := orch.Convert(context.Background(), Request{TargetFormat: "mp4"})

	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Convert() error = %v, want ValidationError", err)
	}
}

func TestConvertTranscodeFailureLeavesNoScratch(t *testing.T) {
	store := newSpyStore()
	tc := &fakeTranscoder{fail: true}
	orch, scratch := newTestOrchestrator(t, store, tc)

	_, err := orch.Convert(context.Background(), Request{
		Filename:     "clip.mp4",
		Body:         strings.NewReader("source"),
		TargetFormat: "mp4",
	})

	var uerr *types.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Convert() error = %v, want UpstreamError", err)
	}
	if uerr.Stage != types.StageTranscode {
		t.Errorf("stage = %q, want %q", uerr.Stage, types.StageTranscode)
	}
	if !strings.Contains(err.Error(), "ffmpeg failed") {
		t.Errorf("error %q does not carry transcoder diagnostics", err)
	}

	mustBeEmptyDir(t, scratch)
}

func TestConvertUploadedObjectDisappeared(t *testing.T) {
	store := newSpyStore()
	store.dropOnFetch = true
	tc := &fakeTranscoder{}
	orch, scratch := newTestOrchestrator(t, store, tc)

	_, err := orch.Convert(context.Background(), Request{
		Filename:     "clip.mp4",
		Body:         strings.NewReader("source"),
		TargetFormat: "mp4",
	})

	var uerr *types.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Convert() error = %v, want UpstreamError", err)
	}
	if uerr.Stage != types.StageFetch {
		t.Errorf("stage = %q, want %q", uerr.Stage, types.StageFetch)
	}
	if tc.calls != 0 {
		t.Errorf("transcoder ran %d times despite missing input", tc.calls)
	}
	mustBeEmptyDir(t, scratch)
}

func TestConvertOutputUploadFailure(t *testing.T) {
	store := newSpyStore()
	store.failPutAfter = 1 // input upload succeeds, output upload fails
	orch, scratch := newTestOrchestrator(t, store, &fakeTranscoder{})

	_, err := orch.Convert(context.Background(), Request{
		Filename:     "clip.mp4",
		Body:         strings.NewReader("source"),
		TargetFormat: "mp4",
	})

	var uerr *types.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Convert() error = %v, want UpstreamError", err)
	}
	if uerr.Stage != types.StageStoreOutput {
		t.Errorf("stage = %q, want %q", uerr.Stage, types.StageStoreOutput)
	}

	// Cleanup runs regardless of the output upload's outcome.
	mustBeEmptyDir(t, scratch)
}

func TestConvertInputUploadFailure(t *testing.T) {
	store := newSpyStore()
	store.putErr = errors.New("connection reset")
	orch, scratch := newTestOrchestrator(t, store, &fakeTranscoder{})

	_, err := orch.Convert(context.Background(), Request{
		Filename:     "clip.mp4",
		Body:         strings.NewReader("source"),
		TargetFormat: "mp4",
	})

	var uerr *types.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Convert() error = %v, want UpstreamError", err)
	}
	if uerr.Stage != types.StageUpload {
		t.Errorf("stage = %q, want %q", uerr.Stage, types.StageUpload)
	}
	mustBeEmptyDir(t, scratch)
}
