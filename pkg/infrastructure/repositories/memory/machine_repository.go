package memory

import (
	"context"
	"sync"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// MachineRepository provides in-memory machine storage
type MachineRepository struct {
	mu       sync.RWMutex
	machines []*entities.Machine
}

// NewMachineRepository creates a new in-memory machine repository
func NewMachineRepository() *MachineRepository {
	return &MachineRepository{}
}

// Verify interface compliance
var _ repositories.MachineRepository = (*MachineRepository)(nil)

// LoadMachines appends machines to the repository
func (r *MachineRepository) LoadMachines(machines []*entities.Machine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range machines {
		copied := *m
		r.machines = append(r.machines, &copied)
	}
	return nil
}

// ListMachines returns copies of all machines
func (r *MachineRepository) ListMachines(ctx context.Context) ([]*entities.Machine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Machine, 0, len(r.machines))
	for _, m := range r.machines {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}
