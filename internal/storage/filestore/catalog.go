package filestore

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// CatalogStore keeps the instrument catalog in assets.json.
type CatalogStore struct {
	path string
	mu   sync.Mutex
}

// NewCatalogStore creates the data directory if needed.
func NewCatalogStore(dir string) (*CatalogStore, error) {
	dir, err := prepareDir(dir)
	if err != nil {
		return nil, err
	}
	return &CatalogStore{path: filepath.Join(dir, assetsFile)}, nil
}

// Load returns the persisted catalog, or nothing when it was never saved.
func (s *CatalogStore) Load(_ context.Context) ([]domain.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var instruments []domain.Instrument
	if err := readJSON(s.path, &instruments); err != nil {
		return nil, err
	}
	return instruments, nil
}

// Save writes the whole catalog with prices rounded to cents.
func (s *CatalogStore) Save(_ context.Context, instruments []domain.Instrument) error {
	out := make([]domain.Instrument, len(instruments))
	for i, inst := range instruments {
		inst.CurrentPrice = domain.Round2(inst.CurrentPrice)
		out[i] = inst
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path, out)
}
