package bom

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/application/services/fixtures"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

type countingProducts struct {
	*fixtures.Scenario
	calls map[entities.ProductID]int
}

func (c *countingProducts) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	c.calls[id]++
	return c.Products.GetProduct(ctx, id)
}

func TestResolver_FlattensComponents(t *testing.T) {
	s := fixtures.NewScenario().
		WithProduct("BIKE",
			fixtures.OnMachine("ASSEMBLY", "10", 1),
			fixtures.Consumes("PAINT", "0.5"),
			fixtures.Contains("WHEEL", 2),
			fixtures.Contains("FRAME", 1),
		).
		WithProduct("WHEEL",
			fixtures.OnMachine("LATHE", "3", 1),
			fixtures.Consumes("STEEL", "1.5"),
			fixtures.Contains("SPOKE", 30),
		).
		WithProduct("SPOKE", fixtures.Consumes("STEEL", "0.01")).
		WithProduct("FRAME",
			fixtures.OnMachine("WELDER", "20", 1),
			fixtures.Consumes("PAINT", "0.25"),
			fixtures.ManualJob("INSPECT", "5"),
		)

	resolved, err := NewResolver(s.Products).Resolve(context.Background(), "BIKE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantMaterials := map[entities.MaterialID]string{
		"PAINT": "0.75", // 0.5 + 0.25
		"STEEL": "3.6",  // 2 x 1.5 + 2 x 30 x 0.01
	}
	if len(resolved.Materials) != len(wantMaterials) {
		t.Fatalf("Expected %d materials, got %d", len(wantMaterials), len(resolved.Materials))
	}
	for _, m := range resolved.Materials {
		want := decimal.RequireFromString(wantMaterials[m.RawMaterialID])
		if !m.QuantityPerUnit.Equal(want) {
			t.Errorf("%s: expected %s per unit, got %s", m.RawMaterialID, want, m.QuantityPerUnit)
		}
	}

	multipliers := map[entities.MachineID]entities.Quantity{}
	for _, step := range resolved.MachineSteps {
		multipliers[step.Step.MachineID] = step.Multiplier
	}
	if multipliers["ASSEMBLY"] != 1 || multipliers["LATHE"] != 2 || multipliers["WELDER"] != 1 {
		t.Errorf("unexpected machine multipliers: %v", multipliers)
	}
	if len(resolved.ManualJobs) != 1 || resolved.ManualJobs[0].Owner != "FRAME" {
		t.Errorf("Expected the FRAME inspection job, got %+v", resolved.ManualJobs)
	}
	if got := resolved.Machines(); len(got) != 3 || got[0] != "ASSEMBLY" {
		t.Errorf("Expected machines in first-use order, got %v", got)
	}
}

func TestResolver_DetectsCycle(t *testing.T) {
	s := fixtures.NewScenario().
		WithProduct("A", fixtures.Contains("B", 1)).
		WithProduct("B", fixtures.Contains("C", 1)).
		WithProduct("C", fixtures.Contains("A", 1))

	_, err := NewResolver(s.Products).Resolve(context.Background(), "A")
	if !errors.Is(err, entities.ErrCircularBOM) {
		t.Fatalf("Expected ErrCircularBOM, got %v", err)
	}

	var cycleErr *entities.CircularBOMError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Expected *CircularBOMError, got %T", err)
	}
	want := []entities.ProductID{"A", "B", "C", "A"}
	if len(cycleErr.Path) != len(want) {
		t.Fatalf("Expected path %v, got %v", want, cycleErr.Path)
	}
	for i := range want {
		if cycleErr.Path[i] != want[i] {
			t.Errorf("Expected path %v, got %v", want, cycleErr.Path)
			break
		}
	}
}

func TestResolver_SharedComponentIsNotACycle(t *testing.T) {
	s := fixtures.NewScenario().
		WithProduct("TOP", fixtures.Contains("LEFT", 1), fixtures.Contains("RIGHT", 1)).
		WithProduct("LEFT", fixtures.Contains("BOLT", 2)).
		WithProduct("RIGHT", fixtures.Contains("BOLT", 3)).
		WithProduct("BOLT", fixtures.Consumes("STEEL", "1"))

	resolved, err := NewResolver(s.Products).Resolve(context.Background(), "TOP")
	if err != nil {
		t.Fatalf("diamond BOM should resolve, got %v", err)
	}
	if !resolved.Materials[0].QuantityPerUnit.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected 5 steel per unit, got %s", resolved.Materials[0].QuantityPerUnit)
	}
}

func TestResolver_MissingProduct(t *testing.T) {
	s := fixtures.NewScenario().WithProduct("KIT", fixtures.Contains("GHOST", 1))

	resolver := NewResolver(s.Products)
	if _, err := resolver.Resolve(context.Background(), "NOWHERE"); !errors.Is(err, entities.ErrProductMissing) {
		t.Errorf("Expected ErrProductMissing for unknown root, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "KIT"); !errors.Is(err, entities.ErrProductMissing) {
		t.Errorf("Expected ErrProductMissing for unknown component, got %v", err)
	}
}

func TestResolver_MemoisesLookups(t *testing.T) {
	s := fixtures.NewScenario().
		WithProduct("TOP", fixtures.Contains("SUB", 1), fixtures.Contains("SUB2", 1)).
		WithProduct("SUB", fixtures.Consumes("X", "1")).
		WithProduct("SUB2", fixtures.Contains("SUB", 1))

	repo := &countingProducts{Scenario: s, calls: map[entities.ProductID]int{}}
	resolver := NewResolver(repo)

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), "TOP"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for id, n := range repo.calls {
		if n != 1 {
			t.Errorf("Expected one lookup for %s, got %d", id, n)
		}
	}
}
