package bom

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
)

// MachineLoad is a machine step reached through the product tree.
// Multiplier is the number of units of the owning product needed per finished unit.
type MachineLoad struct {
	Step       entities.MachineStep
	Owner      entities.ProductID
	Multiplier entities.Quantity
}

// LaborLoad is a manual job reached through the product tree
type LaborLoad struct {
	Step       entities.ManualJobStep
	Owner      entities.ProductID
	Multiplier entities.Quantity
}

// MaterialLoad is the total consumption of one raw material per finished unit
type MaterialLoad struct {
	RawMaterialID   entities.MaterialID
	QuantityPerUnit decimal.Decimal
	UnitOfMeasure   string
}

// ResolvedBOM is a product's bill of materials flattened to a single level
type ResolvedBOM struct {
	Product      *entities.Product
	MachineSteps []MachineLoad
	ManualJobs   []LaborLoad
	Materials    []MaterialLoad
}

// Machines returns the distinct machines in first-use order
func (r *ResolvedBOM) Machines() []entities.MachineID {
	seen := make(map[entities.MachineID]bool)
	var ids []entities.MachineID
	for _, s := range r.MachineSteps {
		if !seen[s.Step.MachineID] {
			seen[s.Step.MachineID] = true
			ids = append(ids, s.Step.MachineID)
		}
	}
	return ids
}

// StepsOn returns the machine steps that run on the given machine
func (r *ResolvedBOM) StepsOn(id entities.MachineID) []MachineLoad {
	var steps []MachineLoad
	for _, s := range r.MachineSteps {
		if s.Step.MachineID == id {
			steps = append(steps, s)
		}
	}
	return steps
}

// Resolver expands products into flattened bills of material. A Resolver
// memoises repository lookups and resolutions and is meant for one planning run.
type Resolver struct {
	products repositories.ProductRepository
	fetched  map[entities.ProductID]*entities.Product
	resolved map[entities.ProductID]*ResolvedBOM
}

// NewResolver creates a resolver backed by the product repository
func NewResolver(products repositories.ProductRepository) *Resolver {
	return &Resolver{
		products: products,
		fetched:  make(map[entities.ProductID]*entities.Product),
		resolved: make(map[entities.ProductID]*ResolvedBOM),
	}
}

// Resolve flattens the product's semi-finished components recursively.
// A product revisited on the current path yields a *entities.CircularBOMError;
// an unknown product yields an error wrapping entities.ErrProductMissing.
func (r *Resolver) Resolve(ctx context.Context, id entities.ProductID) (*ResolvedBOM, error) {
	if res, ok := r.resolved[id]; ok {
		return res, nil
	}

	root, err := r.product(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &ResolvedBOM{Product: root}
	materialIndex := make(map[entities.MaterialID]int)
	onPath := make(map[entities.ProductID]bool)

	if err := r.expand(ctx, root, 1, nil, onPath, res, materialIndex); err != nil {
		return nil, err
	}

	r.resolved[id] = res
	return res, nil
}

func (r *Resolver) expand(
	ctx context.Context,
	p *entities.Product,
	multiplier entities.Quantity,
	path []entities.ProductID,
	onPath map[entities.ProductID]bool,
	res *ResolvedBOM,
	materialIndex map[entities.MaterialID]int,
) error {
	path = append(path, p.ID)
	onPath[p.ID] = true
	defer delete(onPath, p.ID)

	for _, step := range p.MachineSteps {
		res.MachineSteps = append(res.MachineSteps, MachineLoad{Step: step, Owner: p.ID, Multiplier: multiplier})
	}
	for _, job := range p.ManualJobs {
		res.ManualJobs = append(res.ManualJobs, LaborLoad{Step: job, Owner: p.ID, Multiplier: multiplier})
	}

	mult := decimal.NewFromInt(int64(multiplier))
	for _, mat := range p.Materials {
		qty := mat.QuantityPerUnit.Mul(mult)
		if i, ok := materialIndex[mat.RawMaterialID]; ok {
			res.Materials[i].QuantityPerUnit = res.Materials[i].QuantityPerUnit.Add(qty)
			continue
		}
		materialIndex[mat.RawMaterialID] = len(res.Materials)
		res.Materials = append(res.Materials, MaterialLoad{
			RawMaterialID:   mat.RawMaterialID,
			QuantityPerUnit: qty,
			UnitOfMeasure:   mat.UnitOfMeasure,
		})
	}

	for _, comp := range p.Components {
		if onPath[comp.ProductID] {
			cycle := make([]entities.ProductID, 0, len(path)+1)
			for i, id := range path {
				if id == comp.ProductID {
					cycle = append(cycle, path[i:]...)
					break
				}
			}
			cycle = append(cycle, comp.ProductID)
			return &entities.CircularBOMError{Path: cycle}
		}

		child, err := r.product(ctx, comp.ProductID)
		if err != nil {
			return err
		}
		if err := r.expand(ctx, child, multiplier*comp.QuantityPerUnit, path, onPath, res, materialIndex); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) product(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	if p, ok := r.fetched[id]; ok {
		return p, nil
	}

	p, err := r.products.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, entities.ErrProductMissing)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, entities.ErrProductMissing)
	}

	r.fetched[id] = p
	return p, nil
}
