package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/invariant/assert"
	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/fingerprint"
)

// Disk is a content-addressed on-disk Store. Artifacts live at
// <root>/<op_name_sanitized>/<digest[0:2]>/<digest[2:]>; writes go to a
// sibling temporary file first and are renamed into place, so a reader can
// never observe a partially-written artifact.
type Disk struct {
	counters
	root    string
	domains *cacheable.DomainRegistry
}

// NewDisk constructs a Disk store rooted at root. domains is consulted to
// reconstruct any Domain values present in stored artifacts; pass an empty
// registry if the bundled operations never produce domain values.
func NewDisk(root string, domains *cacheable.DomainRegistry) *Disk {
	assert.Precondition(root != "", "disk store root must not be empty")
	assert.NotNil(domains, "domains")
	return &Disk{root: root, domains: domains}
}

var opNameSanitizer = strings.NewReplacer("/", "_", `\`, "_", ":", "_")

func sanitizeOpName(opName string) string {
	return opNameSanitizer.Replace(opName)
}

func (d *Disk) path(opName string, digest fingerprint.Digest) string {
	ds := string(digest)
	return filepath.Join(d.root, sanitizeOpName(opName), ds[:2], ds[2:])
}

// Exists reports whether an artifact file exists at the content-addressed
// path for (opName, digest).
func (d *Disk) Exists(_ context.Context, opName string, digest fingerprint.Digest) (bool, error) {
	_, err := os.Stat(d.path(opName, digest))
	switch {
	case err == nil:
		d.hit()
		return true, nil
	case os.IsNotExist(err):
		d.miss()
		return false, nil
	default:
		return false, errs.New(errs.StorageIO, "stat artifact %s/%s: %v", opName, digest, err)
	}
}

// Get reads and decodes the artifact stored at (opName, digest).
func (d *Disk) Get(_ context.Context, opName string, digest fingerprint.Digest) (cacheable.Value, error) {
	f, err := os.Open(d.path(opName, digest))
	if err != nil {
		if os.IsNotExist(err) {
			return cacheable.Value{}, errs.New(errs.NotFound, "no artifact for %s/%s", opName, digest)
		}
		return cacheable.Value{}, errs.New(errs.StorageIO, "open artifact %s/%s: %v", opName, digest, err)
	}
	defer f.Close()

	v, err := cacheable.Decode(f, d.domains)
	if err != nil {
		return cacheable.Value{}, err
	}
	return v, nil
}

// Put atomically writes artifact's canonical encoding to the
// content-addressed path for (opName, digest).
func (d *Disk) Put(_ context.Context, opName string, digest fingerprint.Digest, artifact cacheable.Value) error {
	if !cacheable.IsCacheable(artifact) {
		return errs.New(errs.NotCacheable, "artifact for %s/%s is not cacheable", opName, digest)
	}

	dest := d.path(opName, digest)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.New(errs.StorageIO, "create artifact directory %s: %v", dir, err)
	}

	encoded, err := cacheable.EncodeBytes(artifact)
	if err != nil {
		return err
	}

	tmpPath, err := tempArtifactPath(dir, opName, digest)
	if err != nil {
		return errs.New(errs.StorageIO, "derive temp artifact path: %v", err)
	}
	if err := os.WriteFile(tmpPath, encoded, 0o644); err != nil {
		return errs.New(errs.StorageIO, "write temp artifact: %v", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return errs.New(errs.StorageIO, "rename artifact into place: %v", err)
	}

	d.put()
	return nil
}

// Stats returns a snapshot of this store's counters.
func (d *Disk) Stats() Stats { return d.snapshot() }

// tempArtifactPath derives a sibling temp-file name from random entropy
// folded through blake2b, distinct from the stable SHA-256 hash used for
// content addressing itself — this name exists only to avoid collisions
// between concurrent writers of the same destination, not to identify
// content.
func tempArtifactPath(dir, opName string, digest fingerprint.Digest) (string, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	seed := append([]byte(opName+string(digest)), nonce[:]...)
	sum := blake2b.Sum256(seed)
	return filepath.Join(dir, hex.EncodeToString(sum[:8])+".tmp"), nil
}
