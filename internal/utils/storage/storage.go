// Package storage keeps uploaded evidence (origin photos, lab reports and
// locator images) and returns the SHA-256 digest of exactly the bytes it
// stored. Artifacts are keyed by generated names, never by digest, so
// identical uploads are kept as separate artifacts.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"HerbPass/domain"

	"github.com/google/uuid"
)

type Class string

const (
	ClassImage    Class = "image"
	ClassDocument Class = "document"
)

var (
	AllowImage    = []string{"png", "jpg", "jpeg"}
	AllowDocument = []string{"pdf"}
)

// Artifact describes bytes durably written to the store.
type Artifact struct {
	Ref    string
	Digest string
	Size   int
}

type EvidenceStore interface {
	// Store checks name's extension against the allow-list of class, writes
	// data under a ref generated from stem and returns the digest of the
	// written bytes.
	Store(ctx context.Context, class Class, stem, name string, data []byte) (Artifact, error)
	Fetch(ctx context.Context, ref string) ([]byte, error)
	// Digest recomputes the SHA-256 of the stored bytes.
	Digest(ctx context.Context, ref string) (string, error)
	// Remove deletes bytes whose database row was never committed.
	Remove(ctx context.Context, ref string) error
}

// DiscardTimeout bounds the cleanup of orphaned bytes.
const DiscardTimeout = 10 * time.Second

// Discard removes bytes whose database row was rolled back. It runs detached
// from ctx's cancellation, so an aborted request still cleans up after itself.
func Discard(ctx context.Context, store EvidenceStore, ref string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DiscardTimeout)
	defer cancel()
	return store.Remove(ctx, ref)
}

func allowList(class Class) []string {
	switch class {
	case ClassImage:
		return AllowImage
	case ClassDocument:
		return AllowDocument
	default:
		return nil
	}
}

// CheckExtension returns the lower-cased extension of name if it is allowed
// for class.
func CheckExtension(class Class, name string) (string, error) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "", fmt.Errorf("%w: %q has no extension", domain.ErrUnsupportedMediaType, name)
	}
	ext := strings.ToLower(name[idx+1:])
	for _, allowed := range allowList(class) {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: .%s is not allowed for %s artifacts", domain.ErrUnsupportedMediaType, ext, class)
}

// newRef builds "<stem>_<8 hex>.<ext>".
func newRef(stem, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s.%s", stem, suffix, ext)
}

// validRef rejects anything that could escape the artifact namespace.
func validRef(ref string) bool {
	if ref == "" || ref == "." || ref == ".." {
		return false
	}
	if strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return false
	}
	return path.Base(ref) == ref
}

func digestOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func notFound(ref string) error {
	return fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, ref)
}

func writeFailed(ref string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageWriteFailed, ref, err)
}
