package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/polystage/polystage/internal/document"
	"github.com/polystage/polystage/internal/store"
)

var ErrNotFound = errors.New("scene not found")

// Service reads and writes the stored scene record.
type Service struct {
	store store.Store
	key   string
}

func NewService(st store.Store, key string) *Service {
	return &Service{store: st, key: key}
}

func (s *Service) Key() string { return s.key }

// Get returns the validated stored record.
func (s *Service) Get(ctx context.Context) (*document.SceneRecord, error) {
	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return document.Decode(data)
}

// Put validates data and stores it in canonical form.
func (s *Service) Put(ctx context.Context, data []byte) (*document.SceneRecord, error) {
	rec, err := document.Decode(data)
	if err != nil {
		return nil, err
	}
	out, err := document.Encode(rec)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, s.key, out); err != nil {
		return nil, fmt.Errorf("put scene: %w", err)
	}
	return rec, nil
}

// Delete clears the stored record. Deleting nothing is not an error.
func (s *Service) Delete(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	return nil
}
