package repositories

import (
	"context"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// MachineRepository provides access to machine master data
type MachineRepository interface {
	ListMachines(ctx context.Context) ([]*entities.Machine, error)
}
