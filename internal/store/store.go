// Package store persists the user directory and the current-session marker
// on top of a key/value repository.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/models"
	"github.com/dmitrijs2005/soraprompter/internal/repositories/kv"
	"github.com/dmitrijs2005/soraprompter/internal/session"
)

// maxUpdateAttempts bounds the optimistic retry loop in UpdateDirectory.
const maxUpdateAttempts = 8

// Store is the durable state of the account engine.
type Store interface {
	// LoadDirectory returns every user. A store that was never written
	// yields an empty directory.
	LoadDirectory(ctx context.Context) (models.Directory, error)

	// SaveDirectory replaces the whole directory.
	SaveDirectory(ctx context.Context, dir models.Directory) error

	// UpdateDirectory loads the directory, applies fn and writes the result
	// back only if nobody else wrote in between, retrying otherwise. fn
	// reports whether it changed anything; when it returns false or an
	// error nothing is written.
	UpdateDirectory(ctx context.Context, fn func(dir models.Directory) (bool, error)) error

	// GetCurrentUser resolves the session marker. It returns nil when there
	// is no marker, the marker does not decode, or the user is gone.
	GetCurrentUser(ctx context.Context) (*models.User, error)

	// SetCurrentUser records username as the session owner. An empty
	// username clears the marker.
	SetCurrentUser(ctx context.Context, username string) error
}

// KVStore keeps the directory as one JSON object under common.UsersKey and
// the encoded marker under common.CurrentUserKey.
type KVStore struct {
	repo  kv.Repository
	codec session.Codec
}

func NewKVStore(repo kv.Repository, codec session.Codec) *KVStore {
	if codec == nil {
		codec = session.PlainCodec{}
	}
	return &KVStore{repo: repo, codec: codec}
}

func (s *KVStore) LoadDirectory(ctx context.Context) (models.Directory, error) {
	dir, _, err := s.loadVersioned(ctx)
	return dir, err
}

func (s *KVStore) SaveDirectory(ctx context.Context, dir models.Directory) error {
	data, err := encodeDirectory(dir)
	if err != nil {
		return err
	}
	if err := s.repo.Put(ctx, common.UsersKey, data); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

func (s *KVStore) UpdateDirectory(ctx context.Context, fn func(dir models.Directory) (bool, error)) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		dir, version, err := s.loadVersioned(ctx)
		if err != nil {
			return err
		}

		changed, err := fn(dir)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		data, err := encodeDirectory(dir)
		if err != nil {
			return err
		}

		err = s.repo.PutIf(ctx, common.UsersKey, data, version)
		if errors.Is(err, common.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	}
	return fmt.Errorf("directory update gave up after %d attempts: %w", maxUpdateAttempts, common.ErrConflict)
}

func (s *KVStore) GetCurrentUser(ctx context.Context) (*models.User, error) {
	marker, _, err := s.repo.Get(ctx, common.CurrentUserKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if len(marker) == 0 {
		return nil, nil
	}

	username, err := s.codec.Decode(string(marker))
	if err != nil {
		return nil, nil
	}

	dir, err := s.LoadDirectory(ctx)
	if err != nil {
		return nil, err
	}
	return dir[username], nil
}

func (s *KVStore) SetCurrentUser(ctx context.Context, username string) error {
	if username == "" {
		if err := s.repo.Delete(ctx, common.CurrentUserKey); err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	}

	marker, err := s.codec.Encode(username)
	if err != nil {
		return err
	}
	if err := s.repo.Put(ctx, common.CurrentUserKey, []byte(marker)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	return nil
}

func (s *KVStore) loadVersioned(ctx context.Context) (models.Directory, string, error) {
	data, version, err := s.repo.Get(ctx, common.UsersKey)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if len(data) == 0 {
		return models.Directory{}, version, nil
	}

	var dir models.Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return nil, "", fmt.Errorf("%w: %w", common.ErrCorruptData, err)
	}
	if dir == nil {
		dir = models.Directory{}
	}
	for name, u := range dir {
		if u == nil {
			delete(dir, name)
		}
	}
	return dir, version, nil
}

func encodeDirectory(dir models.Directory) ([]byte, error) {
	if dir == nil {
		dir = models.Directory{}
	}
	data, err := json.Marshal(dir)
	if err != nil {
		return nil, fmt.Errorf("encode directory: %w", err)
	}
	return data, nil
}
