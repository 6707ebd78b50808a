package report

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/2x3systems/hexpack/hexpack"
	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// OpenStore returns the Store selected by opts.
func OpenStore(ctx context.Context, opts StoreOpts) (Store, error) {
	var (
		store Store
		err   error
	)
	switch opts.Driver {
	case DriverFilesystem, "":
		store, err = newFSStore(opts.Root)
	case DriverS3:
		store, err = newS3Store(ctx, opts)
	case DriverMemory:
		store = NewMemoryStore()
	default:
		err = errors.Wrapf(hexpack.ErrBadConfig, "unknown output driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Write encodes doc into store under doc.Key(compressed) and returns that key.
func Write(ctx context.Context, store Store, doc *Document, compressed bool) (string, error) {
	var buf bytes.Buffer
	if err := doc.Encode(&buf, compressed); err != nil {
		return "", err
	}
	key := doc.Key(compressed)
	if err := store.Put(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return "", errors.WithMessagef(err, "write %q", key)
	}
	klog.V(2).Infof("wrote %s (%s, %d canonical)", key, store.Driver(), doc.Canonical)
	return key, nil
}

// sanitizeKey forbids keys that escape the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.Wrap(hexpack.ErrBadConfig, "empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", errors.Wrapf(hexpack.ErrBadConfig, "invalid key %q", key)
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

type fsStore struct {
	root string
}

func newFSStore(root string) (*fsStore, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &fsStore{root: root}, nil
}

func (s *fsStore) Driver() Driver { return DriverFilesystem }

// Put streams r into a temp file next to the destination, then renames it into place.
func (s *fsStore) Put(ctx context.Context, key string, r io.Reader) error {
	key, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	path := filepath.Join(s.root, key)
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = io.Copy(tmp, r); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *fsStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.root, key))
}

type s3Store struct {
	client *s3.Client
	bucket string
}

func newS3Store(ctx context.Context, opts StoreOpts) (*s3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.Wrap(hexpack.ErrBadConfig, "s3 bucket required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &s3Store{client: client, bucket: opts.Bucket}, nil
}

func (s *s3Store) Driver() Driver { return DriverS3 }

func (s *s3Store) Put(ctx context.Context, key string, r io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	return err
}

func (s *s3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// MemoryStore keeps values in memory.
type MemoryStore struct {
	mu   sync.Mutex
	vals map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vals: make(map[string][]byte),
	}
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader) error {
	val, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.vals[key] = val
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	val, ok := s.vals[key]
	s.mu.Unlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(val)), nil
}

// Keys returns every stored key.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.vals))
	for key := range s.vals {
		keys = append(keys, key)
	}
	return keys
}
