package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/lnshout/shoutout/internal/domain"
)

const appStoreDir = "apps"

type appRepository struct {
	store *badgerhold.Store
}

func NewAppRepository(baseDir string, logger badger.Logger) (domain.AppRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, appStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open app store: %s", err)
	}

	return &appRepository{store}, nil
}

func (r *appRepository) Upsert(ctx context.Context, app *domain.App) error {
	if err := r.store.Upsert(app.ID, *app); err != nil {
		return fmt.Errorf("failed to upsert app: %w", err)
	}
	return nil
}

func (r *appRepository) Get(ctx context.Context, id string) (*domain.App, error) {
	var app domain.App
	err := r.store.Get(id, &app)
	if err == badgerhold.ErrNotFound {
		return nil, domain.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return &app, nil
}

func (r *appRepository) List(ctx context.Context) ([]*domain.App, error) {
	var apps []domain.App
	if err := r.store.Find(&apps, nil); err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}

	result := make([]*domain.App, 0, len(apps))
	for i := range apps {
		result = append(result, &apps[i])
	}
	return result, nil
}

func (r *appRepository) Close() {
	// nolint:all
	r.store.Close()
}
