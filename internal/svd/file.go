// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package svd

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// ModelMetadata describes a stored model file.
type ModelMetadata struct {
	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model file was written.
	SavedAt time.Time `json:"saved_at"`

	// UserCount and ItemCount record the training dimensions.
	UserCount int `json:"user_count"`
	ItemCount int `json:"item_count"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the on-disk format for model files: gob-encoded metadata
// wrapping the gzip-compressed gob encoding of the Model itself.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Save writes the model to path in the stored file format. Used by the
// offline training tooling and by tests.
func Save(path string, m *Model, trainedAt time.Time) error {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedFile{
		Metadata: ModelMetadata{
			TrainedAt: trainedAt,
			SavedAt:   time.Now(),
			UserCount: m.Users(),
			ItemCount: m.Items(),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	f, err := os.Create(path) //nolint:gosec // path comes from validated configuration
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	fileEnc := gob.NewEncoder(f)
	if err := fileEnc.Encode(sf); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}

	return nil
}

// Load reads a model file, verifies its checksum, and validates the decoded
// model. Any failure is a startup failure for the service.
func Load(path string) (*Model, *ModelMetadata, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from validated configuration
	if err != nil {
		return nil, nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	fileDec := gob.NewDecoder(f)
	if err := fileDec.Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	m := &Model{}
	dec := gob.NewDecoder(bytes.NewReader(rawData))
	if err := dec.Decode(m); err != nil {
		return nil, nil, fmt.Errorf("decode model: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid model: %w", err)
	}

	return m, &sf.Metadata, nil
}
