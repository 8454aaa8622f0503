package repositorytest

import (
	"context"
	"sync"

	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
)

var _ repository.MaintenanceRepository = (*MaintenanceRepository)(nil)

// MaintenanceRepository records the maintenance statements it was asked to run.
type MaintenanceRepository struct {
	mu sync.Mutex

	Indexes []string
	Stats   model.TableStats
	// CreateIndexErrs maps an index name to the error CreateIndex returns for it.
	CreateIndexErrs map[string]error
	// Err, when set, is returned by every method other than CreateIndex.
	Err error

	Dropped  bool
	Vacuumed bool
	Analyzed bool
	Created  []string
}

func NewMaintenanceRepository() *MaintenanceRepository {
	return &MaintenanceRepository{
		CreateIndexErrs: make(map[string]error),
	}
}

func (r *MaintenanceRepository) DropValueUniqueConstraint(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Dropped = true
	return nil
}

func (r *MaintenanceRepository) CreateIndex(_ context.Context, index repository.IndexDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.CreateIndexErrs[index.Name]; err != nil {
		return err
	}
	r.Created = append(r.Created, index.Name)
	r.Indexes = append(r.Indexes, index.Name)
	return nil
}

func (r *MaintenanceRepository) Vacuum(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Vacuumed = true
	return nil
}

func (r *MaintenanceRepository) Analyze(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Analyzed = true
	return nil
}

func (r *MaintenanceRepository) GetTableStats(_ context.Context) (model.TableStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return model.TableStats{}, r.Err
	}
	return r.Stats, nil
}

func (r *MaintenanceRepository) ListIndexes(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]string(nil), r.Indexes...), nil
}
