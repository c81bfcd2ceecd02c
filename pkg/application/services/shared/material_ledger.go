package shared

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// MaterialLedger is the running raw material balance for a single planning run.
// The master records stay untouched; draws only move the ledger balance.
type MaterialLedger struct {
	materials map[entities.MaterialID]*entities.RawMaterial
	balances  map[entities.MaterialID]decimal.Decimal
}

// NewMaterialLedger creates a ledger seeded with each material's current stock level
func NewMaterialLedger(materials []*entities.RawMaterial) *MaterialLedger {
	ml := &MaterialLedger{
		materials: make(map[entities.MaterialID]*entities.RawMaterial, len(materials)),
		balances:  make(map[entities.MaterialID]decimal.Decimal, len(materials)),
	}
	for _, m := range materials {
		if m == nil {
			continue
		}
		ml.materials[m.ID] = m
		ml.balances[m.ID] = m.CurrentStockLevel
	}
	return ml
}

// Material returns the master record or an error wrapping ErrMaterialMissing
func (ml *MaterialLedger) Material(id entities.MaterialID) (*entities.RawMaterial, error) {
	m, ok := ml.materials[id]
	if !ok {
		return nil, fmt.Errorf("raw material %s: %w", id, entities.ErrMaterialMissing)
	}
	return m, nil
}

// Has reports whether the material is part of the snapshot
func (ml *MaterialLedger) Has(id entities.MaterialID) bool {
	_, ok := ml.materials[id]
	return ok
}

// Balance returns the running balance of the material, zero when unknown
func (ml *MaterialLedger) Balance(id entities.MaterialID) decimal.Decimal {
	return ml.balances[id]
}

// Usable returns the balance that can still be drawn, never negative
func (ml *MaterialLedger) Usable(id entities.MaterialID) decimal.Decimal {
	b := ml.balances[id]
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// Draw removes qty from the running balance
func (ml *MaterialLedger) Draw(id entities.MaterialID, qty decimal.Decimal) error {
	if !ml.Has(id) {
		return fmt.Errorf("failed to draw %s: raw material %s: %w", qty, id, entities.ErrMaterialMissing)
	}
	if qty.IsNegative() {
		return fmt.Errorf("draw quantity cannot be negative, got %s", qty)
	}
	if qty.GreaterThan(ml.Usable(id)) {
		return fmt.Errorf("insufficient stock for %s: requested %s, usable %s", id, qty, ml.Usable(id))
	}
	ml.balances[id] = ml.balances[id].Sub(qty)
	return nil
}

// Materials returns the master records in code order
func (ml *MaterialLedger) Materials() []*entities.RawMaterial {
	out := make([]*entities.RawMaterial, 0, len(ml.materials))
	for _, m := range ml.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].ID < out[j].ID
	})
	return out
}
