package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"

	"kbrag/internal/domain"
)

// Store persists a flat index as three co-located artifacts sharing a base
// path:
//
//	<base>.db           bolt search structure: manifest + position table
//	<base>.chunks.json  chunk list with full metadata, in position order
//	<base>.vectors.bin  raw little-endian float32 matrix, row per position
//
// All three must be present and mutually consistent for Load to succeed;
// anything else is a load failure and the caller falls back to a rebuild.
type Store struct {
	base string
}

var (
	bucketManifest  = []byte("manifest")
	bucketPositions = []byte("positions")
	keyManifest     = []byte("current")
)

type manifest struct {
	Count     int    `json:"count"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model"`
	SavedAt   int64  `json:"saved_at"`
}

// positionEntry ties an index position to its chunk and its row in the
// vector matrix. ContentHash guards against a chunk file that drifted from
// the search structure.
type positionEntry struct {
	Position    int    `json:"position"`
	Offset      int64  `json:"offset"`
	ContentHash string `json:"content_hash"`
}

func New(base string) *Store {
	return &Store{base: base}
}

func (s *Store) dbPath() string      { return s.base + ".db" }
func (s *Store) chunksPath() string  { return s.base + ".chunks.json" }
func (s *Store) vectorsPath() string { return s.base + ".vectors.bin" }

// Save writes all three artifacts, creating missing parent directories.
func (s *Store) Save(model string, chunks []domain.Document, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	dimension := 0
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dimension)
		}
	}

	if dir := filepath.Dir(s.base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}

	if err := s.saveChunks(chunks); err != nil {
		return err
	}
	if err := s.saveVectors(vectors); err != nil {
		return err
	}
	if err := s.saveStructure(model, dimension, chunks, vectors); err != nil {
		return err
	}

	log.Info().Str("path", s.base).Int("chunks", len(chunks)).Int("dimension", dimension).Msg("saved index")
	return nil
}

func (s *Store) saveChunks(chunks []domain.Document) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	if err := os.WriteFile(s.chunksPath(), data, 0644); err != nil {
		return fmt.Errorf("write chunk list: %w", err)
	}
	return nil
}

func (s *Store) saveVectors(vectors [][]float32) error {
	buf := make([]byte, 0, len(vectors)*dimensionOf(vectors)*4)
	row := make([]byte, 4)
	for _, v := range vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(row, math.Float32bits(x))
			buf = append(buf, row...)
		}
	}
	if err := os.WriteFile(s.vectorsPath(), buf, 0644); err != nil {
		return fmt.Errorf("write vector matrix: %w", err)
	}
	return nil
}

func (s *Store) saveStructure(model string, dimension int, chunks []domain.Document, vectors [][]float32) error {
	db, err := bbolt.Open(s.dbPath(), 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("open search structure: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketManifest, bucketPositions} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		m := manifest{
			Count:     len(chunks),
			Dimension: dimension,
			Model:     model,
			SavedAt:   time.Now().Unix(),
		}
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketManifest).Put(keyManifest, data); err != nil {
			return err
		}

		positions := tx.Bucket(bucketPositions)
		for i, chunk := range chunks {
			entry := positionEntry{
				Position:    i,
				Offset:      int64(i) * int64(dimension) * 4,
				ContentHash: contentHash(chunk.Content),
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := positions.Put(positionKey(i), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load restores the chunk list and vector matrix. It either returns the
// complete state at save time or an error; no partial result is ever
// returned.
func (s *Store) Load(expectedModel string) ([]domain.Document, [][]float32, error) {
	m, entries, err := s.loadStructure()
	if err != nil {
		return nil, nil, err
	}
	if expectedModel != "" && m.Model != expectedModel {
		return nil, nil, fmt.Errorf("index built with model %q, want %q", m.Model, expectedModel)
	}

	chunks, err := s.loadChunks()
	if err != nil {
		return nil, nil, err
	}
	if len(chunks) != m.Count {
		return nil, nil, fmt.Errorf("chunk list has %d entries, manifest says %d", len(chunks), m.Count)
	}

	vectors, err := s.loadVectors(m.Count, m.Dimension)
	if err != nil {
		return nil, nil, err
	}

	for i, entry := range entries {
		if entry.Position != i {
			return nil, nil, fmt.Errorf("position table out of order at %d", i)
		}
		if entry.ContentHash != contentHash(chunks[i].Content) {
			return nil, nil, fmt.Errorf("chunk %d does not match the search structure", i)
		}
	}

	log.Info().Str("path", s.base).Int("chunks", len(chunks)).Msg("loaded index")
	return chunks, vectors, nil
}

func (s *Store) loadStructure() (manifest, []positionEntry, error) {
	var m manifest

	db, err := bbolt.Open(s.dbPath(), 0644, &bbolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return m, nil, fmt.Errorf("open search structure: %w", err)
	}
	defer db.Close()

	var entries []positionEntry
	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketManifest)
		if mb == nil {
			return fmt.Errorf("manifest bucket missing")
		}
		data := mb.Get(keyManifest)
		if data == nil {
			return fmt.Errorf("manifest missing")
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parse manifest: %w", err)
		}

		pb := tx.Bucket(bucketPositions)
		if pb == nil {
			return fmt.Errorf("position bucket missing")
		}
		entries = make([]positionEntry, 0, m.Count)
		return pb.ForEach(func(k, v []byte) error {
			var entry positionEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("parse position entry: %w", err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return m, nil, err
	}
	if len(entries) != m.Count {
		return m, nil, fmt.Errorf("position table has %d entries, manifest says %d", len(entries), m.Count)
	}
	return m, entries, nil
}

func (s *Store) loadChunks() ([]domain.Document, error) {
	data, err := os.ReadFile(s.chunksPath())
	if err != nil {
		return nil, fmt.Errorf("read chunk list: %w", err)
	}
	var chunks []domain.Document
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parse chunk list: %w", err)
	}
	return chunks, nil
}

func (s *Store) loadVectors(count, dimension int) ([][]float32, error) {
	data, err := os.ReadFile(s.vectorsPath())
	if err != nil {
		return nil, fmt.Errorf("read vector matrix: %w", err)
	}
	if len(data) != count*dimension*4 {
		return nil, fmt.Errorf("vector matrix is %d bytes, want %d", len(data), count*dimension*4)
	}

	vectors := make([][]float32, count)
	pos := 0
	for i := range vectors {
		row := make([]float32, dimension)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[pos:]))
			pos += 4
		}
		vectors[i] = row
	}
	return vectors, nil
}

// positionKey is big-endian so bolt iterates positions in order.
func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}

func dimensionOf(vectors [][]float32) int {
	if len(vectors) == 0 {
		return 0
	}
	return len(vectors[0])
}
