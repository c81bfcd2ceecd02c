package orchestration

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// Snapshot is the master data one planning run works against
type Snapshot struct {
	Orders    []*entities.Order
	Machines  []*entities.Machine
	Materials []*entities.RawMaterial
}

// LoadSnapshot fetches orders, machines and stock concurrently. Any failure
// aborts the others and fails the load.
func LoadSnapshot(
	ctx context.Context,
	orders repositories.OrderRepository,
	machines repositories.MachineRepository,
	materials repositories.MaterialRepository,
) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := orders.ListActiveOrders(ctx)
		if err != nil {
			return fmt.Errorf("failed to list active orders: %w", err)
		}
		active := make([]*entities.Order, 0, len(list))
		for _, o := range list {
			if o != nil && o.IsActive() {
				active = append(active, o)
			}
		}
		snap.Orders = active
		return nil
	})
	g.Go(func() error {
		list, err := machines.ListMachines(ctx)
		if err != nil {
			return fmt.Errorf("failed to list machines: %w", err)
		}
		snap.Machines = list
		return nil
	})
	g.Go(func() error {
		list, err := materials.ListRawMaterialStock(ctx)
		if err != nil {
			return fmt.Errorf("failed to list raw material stock: %w", err)
		}
		snap.Materials = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
