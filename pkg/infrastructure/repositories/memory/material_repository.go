package memory

import (
	"context"
	"sync"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// MaterialRepository provides in-memory raw material stock storage
type MaterialRepository struct {
	mu        sync.RWMutex
	materials []*entities.RawMaterial
}

// NewMaterialRepository creates a new in-memory material repository
func NewMaterialRepository() *MaterialRepository {
	return &MaterialRepository{}
}

// Verify interface compliance
var _ repositories.MaterialRepository = (*MaterialRepository)(nil)

// LoadMaterials appends stock records to the repository
func (r *MaterialRepository) LoadMaterials(materials []*entities.RawMaterial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range materials {
		copied := *m
		r.materials = append(r.materials, &copied)
	}
	return nil
}

// ListRawMaterialStock returns copies of all stock records
func (r *MaterialRepository) ListRawMaterialStock(ctx context.Context) ([]*entities.RawMaterial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.RawMaterial, 0, len(r.materials))
	for _, m := range r.materials {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}
