package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"HerbPass/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refPattern = regexp.MustCompile(`^lab_HB-0123456789_[0-9a-f]{8}\.pdf$`)

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestCheckExtension(t *testing.T) {
	tests := []struct {
		name    string
		class   Class
		file    string
		want    string
		wantErr bool
	}{
		{name: "pdf document", class: ClassDocument, file: "report.pdf", want: "pdf"},
		{name: "upper case", class: ClassDocument, file: "REPORT.PDF", want: "pdf"},
		{name: "jpeg image", class: ClassImage, file: "field.photo.JPEG", want: "jpeg"},
		{name: "txt document", class: ClassDocument, file: "report.txt", wantErr: true},
		{name: "pdf as image", class: ClassImage, file: "report.pdf", wantErr: true},
		{name: "no extension", class: ClassImage, file: "photo", wantErr: true},
		{name: "trailing dot", class: ClassImage, file: "photo.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckExtension(tt.class, tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedMediaType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	data := []byte("%PDF-1.4 lab results")
	artifact, err := store.Store(ctx, ClassDocument, "lab_HB-0123456789", "results.pdf", data)
	require.NoError(t, err)

	assert.Regexp(t, refPattern, artifact.Ref)
	assert.Equal(t, sha256Hex(data), artifact.Digest)
	assert.Equal(t, len(data), artifact.Size)

	fetched, err := store.Fetch(ctx, artifact.Ref)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	digest, err := store.Digest(ctx, artifact.Ref)
	require.NoError(t, err)
	assert.Equal(t, artifact.Digest, digest)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLocalStoreKeepsDuplicatesSeparate(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("%PDF-1.4 same bytes")
	first, err := store.Store(ctx, ClassDocument, "lab_HB-0123456789", "a.pdf", data)
	require.NoError(t, err)
	second, err := store.Store(ctx, ClassDocument, "lab_HB-0123456789", "a.pdf", data)
	require.NoError(t, err)

	assert.NotEqual(t, first.Ref, second.Ref)
	assert.Equal(t, first.Digest, second.Digest)
}

func TestLocalStoreRejectsBeforeWriting(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	_, err = store.Store(context.Background(), ClassDocument, "lab_HB-0123456789", "notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedMediaType)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStoreDetectsTampering(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	artifact, err := store.Store(ctx, ClassDocument, "lab_HB-0123456789", "r.pdf", []byte("%PDF-1.4 original"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, artifact.Ref), []byte("%PDF-1.4 forged"), 0o644))

	digest, err := store.Digest(ctx, artifact.Ref)
	require.NoError(t, err)
	assert.NotEqual(t, artifact.Digest, digest)
}

func TestLocalStoreUnknownAndUnsafeRefs(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"missing.pdf", "../etc/passwd", "a/b.pdf", "..", ""} {
		_, err := store.Fetch(ctx, ref)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound, ref)

		_, err = store.Digest(ctx, ref)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound, ref)
	}
}

func TestLocalStoreRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	artifact, err := store.Store(ctx, ClassImage, "qr_HB-0123456789", "qr.png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, artifact.Ref))
	require.NoError(t, store.Remove(ctx, artifact.Ref), "removing twice is not an error")

	_, err = store.Fetch(ctx, artifact.Ref)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestLocalStoreWriteFailure(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(root))

	_, err = store.Store(context.Background(), ClassDocument, "lab_HB-0123456789", "r.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, domain.ErrStorageWriteFailed)
}

func TestLocalStoreNeverReplacesExistingRef(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	refs := []string{"lab_HB-0123456789_aaaaaaaa.pdf", "lab_HB-0123456789_aaaaaaaa.pdf", "lab_HB-0123456789_bbbbbbbb.pdf"}
	next := 0
	store := &localStore{root: root, refs: func(stem, ext string) string {
		ref := refs[next]
		next++
		return ref
	}}

	first, err := store.Store(ctx, ClassDocument, "lab_HB-0123456789", "a.pdf", []byte("%PDF-1.4 first"))
	require.NoError(t, err)
	second, err := store.Store(ctx, ClassDocument, "lab_HB-0123456789", "b.pdf", []byte("%PDF-1.4 second"))
	require.NoError(t, err)

	assert.Equal(t, "lab_HB-0123456789_aaaaaaaa.pdf", first.Ref)
	assert.Equal(t, "lab_HB-0123456789_bbbbbbbb.pdf", second.Ref)

	digest, err := store.Digest(ctx, first.Ref)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, digest)
	assert.Equal(t, sha256Hex([]byte("%PDF-1.4 first")), digest)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files are cleaned up")
}

func TestLocalStoreGivesUpWhenRefsKeepColliding(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := &localStore{root: root, refs: func(stem, ext string) string {
		return stem + "_cccccccc." + ext
	}}

	original, err := store.Store(ctx, ClassDocument, "lab_HB-0123456789", "a.pdf", []byte("%PDF-1.4 kept"))
	require.NoError(t, err)

	_, err = store.Store(ctx, ClassDocument, "lab_HB-0123456789", "b.pdf", []byte("%PDF-1.4 rejected"))
	assert.ErrorIs(t, err, domain.ErrStorageWriteFailed)

	data, err := store.Fetch(ctx, original.Ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 kept"), data)
}

// liveContextStore fails removals on a done context, as a network-backed
// store would.
type liveContextStore struct {
	EvidenceStore
	sawDeadline bool
}

func (s *liveContextStore) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, s.sawDeadline = ctx.Deadline()
	return s.EvidenceStore.Remove(ctx, ref)
}

func TestDiscardOutlivesCancelledRequest(t *testing.T) {
	root := t.TempDir()
	local, err := NewLocalStore(root)
	require.NoError(t, err)
	store := &liveContextStore{EvidenceStore: local}

	ctx, cancel := context.WithCancel(context.Background())
	artifact, err := store.Store(ctx, ClassImage, "photo_HB-0123456789", "p.png", []byte("png"))
	require.NoError(t, err)
	cancel()

	require.NoError(t, Discard(ctx, store, artifact.Ref))
	assert.True(t, store.sawDeadline)

	_, err = store.Fetch(context.Background(), artifact.Ref)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}
