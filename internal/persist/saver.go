package persist

import (
	"context"
	"fmt"

	"route_tracker/internal/models"
	"route_tracker/internal/storage"
)

// StorageKey is the single key holding the whole serialized collection.
const StorageKey = "routes"

// Saver writes and reads the collection blob through a storage.Store.
type Saver struct {
	store storage.Store
}

func NewSaver(store storage.Store) *Saver {
	return &Saver{store: store}
}

// Save serializes c and stores it under StorageKey.
func (s *Saver) Save(ctx context.Context, c *models.Collection) error {
	blob, err := Serialize(c)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, StorageKey, blob); err != nil {
		return fmt.Errorf("save routes: %w", err)
	}
	return nil
}

// Load returns the saved routes. A missing key yields no routes and no
// error; an unreadable blob yields ErrCorruptData.
func (s *Saver) Load(ctx context.Context) ([]*models.Route, error) {
	blob, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load routes: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return Deserialize(blob)
}

// Clear removes the saved blob.
func (s *Saver) Clear(ctx context.Context) error {
	if err := s.store.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear routes: %w", err)
	}
	return nil
}
