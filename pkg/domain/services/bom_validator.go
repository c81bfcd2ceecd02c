package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// BOMValidator checks product master data for structural problems before it is
// planned or persisted. Planning still reports these per order; the validator
// surfaces them up front.
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	CyclePaths          [][]entities.ProductID
	DuplicateComponents []string
	UnknownComponents   []string
	UnknownMachines     []string
	UnknownMaterials    []string
	Errors              []string
}

// HasCycles reports whether any component cycle was found
func (r *ValidationResult) HasCycles() bool {
	return len(r.CyclePaths) > 0
}

// Valid reports whether no problem was found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateProducts checks products against each other and against the known
// machines and raw materials. Nil machine or material slices skip those checks.
func (v *BOMValidator) ValidateProducts(
	products []*entities.Product,
	machines []*entities.Machine,
	materials []*entities.RawMaterial,
) *ValidationResult {
	result := &ValidationResult{}

	known := make(map[entities.ProductID]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}
	machineIDs := make(map[entities.MachineID]bool, len(machines))
	for _, m := range machines {
		machineIDs[m.ID] = true
	}
	materialIDs := make(map[entities.MaterialID]bool, len(materials))
	for _, m := range materials {
		materialIDs[m.ID] = true
	}

	for _, p := range products {
		seen := make(map[entities.ProductID]bool, len(p.Components))
		for _, c := range p.Components {
			if seen[c.ProductID] {
				result.DuplicateComponents = append(result.DuplicateComponents, fmt.Sprintf("%s -> %s", p.ID, c.ProductID))
			}
			seen[c.ProductID] = true
			if !known[c.ProductID] {
				result.UnknownComponents = append(result.UnknownComponents, fmt.Sprintf("%s -> %s", p.ID, c.ProductID))
			}
		}
		if machines != nil {
			for _, s := range p.MachineSteps {
				if !machineIDs[s.MachineID] {
					result.UnknownMachines = append(result.UnknownMachines, fmt.Sprintf("%s -> %s", p.ID, s.MachineID))
				}
			}
		}
		if materials != nil {
			for _, m := range p.Materials {
				if !materialIDs[m.RawMaterialID] {
					result.UnknownMaterials = append(result.UnknownMaterials, fmt.Sprintf("%s -> %s", p.ID, m.RawMaterialID))
				}
			}
		}
	}

	result.CyclePaths = v.detectCycles(v.buildAdjacencyMap(products))

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, (&entities.CircularBOMError{Path: cycle}).Error())
	}
	for _, d := range result.DuplicateComponents {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate component line %s", d))
	}
	for _, u := range result.UnknownComponents {
		result.Errors = append(result.Errors, fmt.Sprintf("unknown component %s", u))
	}
	for _, u := range result.UnknownMachines {
		result.Errors = append(result.Errors, fmt.Sprintf("unknown machine %s", u))
	}
	for _, u := range result.UnknownMaterials {
		result.Errors = append(result.Errors, fmt.Sprintf("unknown raw material %s", u))
	}

	return result
}

// buildAdjacencyMap creates a map of parent -> distinct components
func (v *BOMValidator) buildAdjacencyMap(products []*entities.Product) map[entities.ProductID][]entities.ProductID {
	adjacencyMap := make(map[entities.ProductID][]entities.ProductID, len(products))

	for _, p := range products {
		seen := make(map[entities.ProductID]bool)
		for _, c := range p.Components {
			if !seen[c.ProductID] {
				seen[c.ProductID] = true
				adjacencyMap[p.ID] = append(adjacencyMap[p.ID], c.ProductID)
			}
		}
	}

	return adjacencyMap
}

// detectCycles uses DFS with a recursion stack. Roots are visited in ID order
// so the reported paths are stable.
func (v *BOMValidator) detectCycles(adjacencyMap map[entities.ProductID][]entities.ProductID) [][]entities.ProductID {
	visited := make(map[entities.ProductID]bool)
	recursionStack := make(map[entities.ProductID]bool)
	var cycles [][]entities.ProductID

	roots := make([]entities.ProductID, 0, len(adjacencyMap))
	for parent := range adjacencyMap {
		roots = append(roots, parent)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	for _, parent := range roots {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *BOMValidator) dfsDetectCycle(
	current entities.ProductID,
	adjacencyMap map[entities.ProductID][]entities.ProductID,
	visited map[entities.ProductID]bool,
	recursionStack map[entities.ProductID]bool,
	path []entities.ProductID,
	cycles *[][]entities.ProductID,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
			continue
		}
		if !recursionStack[child] {
			continue
		}
		for i, part := range path {
			if part == child {
				cycle := make([]entities.ProductID, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	recursionStack[current] = false
}
