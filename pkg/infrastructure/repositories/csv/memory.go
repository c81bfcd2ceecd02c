package csv

import (
	"github.com/vsinha/prodplan/pkg/application/services/orchestration"
	"github.com/vsinha/prodplan/pkg/infrastructure/repositories/memory"
)

// Repositories loads the scenario into fresh in-memory repositories.
func (s *Scenario) Repositories() (orchestration.Repositories, error) {
	orders := memory.NewOrderRepository(len(s.Orders))
	if err := orders.LoadOrders(s.Orders); err != nil {
		return orchestration.Repositories{}, err
	}
	products := memory.NewProductRepository(len(s.Products))
	if err := products.LoadProducts(s.Products); err != nil {
		return orchestration.Repositories{}, err
	}
	machines := memory.NewMachineRepository()
	if err := machines.LoadMachines(s.Machines); err != nil {
		return orchestration.Repositories{}, err
	}
	materials := memory.NewMaterialRepository()
	if err := materials.LoadMaterials(s.Materials); err != nil {
		return orchestration.Repositories{}, err
	}
	invoices := memory.NewInvoiceRepository()
	for id, health := range s.Invoices {
		invoices.SetInvoiceHealth(id, health)
	}

	return orchestration.Repositories{
		Orders:    orders,
		Products:  products,
		Machines:  machines,
		Materials: materials,
		Invoices:  invoices,
	}, nil
}
