package postgres

import (
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

func (m OrderModel) toEntity() (*entities.Order, error) {
	status, err := entities.ParseOrderStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return entities.NewOrder(
		entities.OrderID(m.ID),
		m.CustomerID,
		m.CustomerName,
		entities.ProductID(m.ProductID),
		entities.Quantity(m.QuantityOrdered),
		entities.Quantity(m.QuantityDelivered),
		m.OrderDate,
		m.DeliveryDate,
		status,
	)
}

func orderModelFromEntity(o *entities.Order) OrderModel {
	return OrderModel{
		ID:                string(o.ID),
		CustomerID:        o.CustomerID,
		CustomerName:      o.CustomerName,
		ProductID:         string(o.ProductID),
		QuantityOrdered:   int64(o.QuantityOrdered),
		QuantityDelivered: int64(o.QuantityDelivered),
		OrderDate:         o.OrderDate,
		DeliveryDate:      o.DeliveryDate,
		Status:            o.Status.String(),
	}
}

func (m ProductModel) toEntity() (*entities.Product, error) {
	p, err := entities.NewProduct(entities.ProductID(m.ID), m.Name)
	if err != nil {
		return nil, err
	}

	for _, s := range m.MachineSteps {
		step, err := entities.NewMachineStep(entities.MachineID(s.MachineID), s.CycleTimeMinutes, entities.Quantity(s.UnitsPerCycle))
		if err != nil {
			return nil, err
		}
		p.MachineSteps = append(p.MachineSteps, *step)
	}
	for _, j := range m.ManualJobs {
		job, err := entities.NewManualJobStep(entities.ManualJobID(j.ManualJobID), j.Name, j.MinutesPerUnit)
		if err != nil {
			return nil, err
		}
		p.ManualJobs = append(p.ManualJobs, *job)
	}
	for _, mat := range m.Materials {
		req, err := entities.NewMaterialRequirement(entities.MaterialID(mat.RawMaterialID), mat.QuantityPerUnit, mat.UnitOfMeasure)
		if err != nil {
			return nil, err
		}
		p.Materials = append(p.Materials, *req)
	}
	for _, c := range m.Components {
		comp, err := entities.NewComponentRequirement(p.ID, entities.ProductID(c.ComponentID), entities.Quantity(c.QuantityPerUnit))
		if err != nil {
			return nil, err
		}
		p.Components = append(p.Components, *comp)
	}
	return p, nil
}

func productModelFromEntity(p *entities.Product) ProductModel {
	row := ProductModel{ID: string(p.ID), Name: p.Name}
	for i, s := range p.MachineSteps {
		row.MachineSteps = append(row.MachineSteps, ProductMachineStepModel{
			ProductID:        row.ID,
			Sequence:         i,
			MachineID:        string(s.MachineID),
			CycleTimeMinutes: s.CycleTimeMinutes,
			UnitsPerCycle:    int64(s.UnitsPerCycle),
		})
	}
	for i, j := range p.ManualJobs {
		row.ManualJobs = append(row.ManualJobs, ProductManualJobModel{
			ProductID:      row.ID,
			Sequence:       i,
			ManualJobID:    string(j.ManualJobID),
			Name:           j.Name,
			MinutesPerUnit: j.MinutesPerUnit,
		})
	}
	for _, m := range p.Materials {
		row.Materials = append(row.Materials, ProductMaterialModel{
			ProductID:       row.ID,
			RawMaterialID:   string(m.RawMaterialID),
			QuantityPerUnit: m.QuantityPerUnit,
			UnitOfMeasure:   m.UnitOfMeasure,
		})
	}
	for _, c := range p.Components {
		row.Components = append(row.Components, ProductComponentModel{
			ProductID:       row.ID,
			ComponentID:     string(c.ProductID),
			QuantityPerUnit: int64(c.QuantityPerUnit),
		})
	}
	return row
}
