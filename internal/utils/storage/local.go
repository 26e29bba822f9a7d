package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// refAttempts bounds how many generated refs Store tries when a name is
// already taken.
const refAttempts = 3

type localStore struct {
	root string
	refs func(stem, ext string) string
}

// NewLocalStore keeps artifacts as flat files under root, creating it if
// needed.
func NewLocalStore(root string) (EvidenceStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload folder %s: %w", root, err)
	}
	return &localStore{root: root, refs: newRef}, nil
}

func (s *localStore) Store(ctx context.Context, class Class, stem, name string, data []byte) (Artifact, error) {
	ext, err := CheckExtension(class, name)
	if err != nil {
		return Artifact{}, err
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return Artifact{}, writeFailed(stem, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	hash := sha256.New()
	n, err := io.MultiWriter(tmp, hash).Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Artifact{}, writeFailed(stem, err)
	}

	// Publish only after fsync so a ref never names partial bytes. Link fails
	// on an existing name, so a stored artifact is never replaced.
	for attempt := 0; attempt < refAttempts; attempt++ {
		ref := s.refs(stem, ext)
		err = os.Link(tmpName, filepath.Join(s.root, ref))
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return Artifact{}, writeFailed(ref, err)
		}
		return Artifact{
			Ref:    ref,
			Digest: hex.EncodeToString(hash.Sum(nil)),
			Size:   n,
		}, nil
	}
	return Artifact{}, writeFailed(stem, fmt.Errorf("no free ref after %d attempts: %w", refAttempts, err))
}

func (s *localStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if !validRef(ref) {
		return nil, notFound(ref)
	}
	data, err := os.ReadFile(filepath.Join(s.root, ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(ref)
		}
		return nil, fmt.Errorf("read artifact %s: %w", ref, err)
	}
	return data, nil
}

func (s *localStore) Digest(ctx context.Context, ref string) (string, error) {
	if !validRef(ref) {
		return "", notFound(ref)
	}
	f, err := os.Open(filepath.Join(s.root, ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound(ref)
		}
		return "", fmt.Errorf("open artifact %s: %w", ref, err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("hash artifact %s: %w", ref, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (s *localStore) Remove(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return notFound(ref)
	}
	err := os.Remove(filepath.Join(s.root, ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
