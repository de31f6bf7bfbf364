package filestore

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// AccountStore keeps every account in accounts.json.
type AccountStore struct {
	path string
	mu   sync.Mutex
}

// NewAccountStore creates the data directory if needed.
func NewAccountStore(dir string) (*AccountStore, error) {
	dir, err := prepareDir(dir)
	if err != nil {
		return nil, err
	}
	return &AccountStore{path: filepath.Join(dir, accountsFile)}, nil
}

// LoadAll returns every persisted account. A missing file means no accounts.
func (s *AccountStore) LoadAll(_ context.Context) ([]domain.AccountState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Save inserts or replaces the account with the same id.
func (s *AccountStore) Save(_ context.Context, state domain.AccountState) error {
	if state.ID == "" {
		return errors.New("account id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.read()
	if err != nil {
		return err
	}

	replaced := false
	for i := range accounts {
		if accounts[i].ID == state.ID {
			accounts[i] = state
			replaced = true
			break
		}
	}
	if !replaced {
		accounts = append(accounts, state)
	}

	return writeJSON(s.path, accounts)
}

// Exists reports whether any account uses username.
func (s *AccountStore) Exists(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.read()
	if err != nil {
		return false, err
	}
	for _, a := range accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *AccountStore) read() ([]domain.AccountState, error) {
	var accounts []domain.AccountState
	if err := readJSON(s.path, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
