package mir

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the encoded Module layout changes
const codecSchemaVersion uint16 = 1

// FileExt is the conventional extension of encoded module files.
const FileExt = ".mirpk"

// ErrSchemaMismatch is returned when a file was written by an incompatible encoder.
var ErrSchemaMismatch = errors.New("mir: unsupported schema version")

type modulePayload struct {
	Schema uint16
	Module *Module
}

func newEncoder(w io.Writer) *msgpack.Encoder {
	enc := msgpack.NewEncoder(w)
	// block names are a map; sorted keys keep the encoding canonical
	enc.SetSortMapKeys(true)
	return enc
}

// EncodeModule writes m in the canonical msgpack form.
func EncodeModule(w io.Writer, m *Module) error {
	if m == nil {
		return fmt.Errorf("mir: encode nil module")
	}
	return newEncoder(w).Encode(&modulePayload{Schema: codecSchemaVersion, Module: m})
}

// DecodeModule reads a module written by EncodeModule.
func DecodeModule(r io.Reader) (*Module, error) {
	var payload modulePayload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("mir: decode module: %w", err)
	}
	if payload.Schema != codecSchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchemaMismatch, payload.Schema, codecSchemaVersion)
	}
	if payload.Module == nil {
		return nil, fmt.Errorf("mir: decode module: empty payload")
	}
	return payload.Module, nil
}

// WriteModuleFile encodes m into path, replacing it atomically.
func WriteModuleFile(path string, m *Module) (err error) {
	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = EncodeModule(f, m); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Atomic replace
	return os.Rename(f.Name(), path)
}

// ReadModuleFile decodes the module stored at path.
func ReadModuleFile(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := DecodeModule(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Digest is the SHA-256 of a body's canonical encoding.
type Digest [32]byte

// BodyDigest hashes the canonical encoding of b. Structurally equal bodies
// share a digest.
func BodyDigest(b *Body) (Digest, error) {
	var buf bytes.Buffer
	if err := newEncoder(&buf).Encode(b); err != nil {
		return Digest{}, fmt.Errorf("mir: digest %s: %w", b.Name, err)
	}
	return sha256.Sum256(buf.Bytes()), nil
}
