package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Planning error taxonomy. Per-order conditions are reported on the plan item
// rather than failing the whole run.
var (
	ErrMachineMissing      = errors.New("machine missing")
	ErrCircularBOM         = errors.New("circular bill of materials")
	ErrMaterialMissing     = errors.New("raw material missing")
	ErrUnschedulable       = errors.New("order unschedulable")
	ErrFinanceLookupFailed = errors.New("finance lookup failed")
	ErrProductMissing      = errors.New("product missing")
	ErrNotFound            = errors.New("not found")
)

// CircularBOMError reports the resolution path that revisited a product
type CircularBOMError struct {
	Path []ProductID
}

func (e *CircularBOMError) Error() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = string(p)
	}
	return fmt.Sprintf("circular bill of materials: %s", strings.Join(parts, " -> "))
}

// Is lets errors.Is match ErrCircularBOM
func (e *CircularBOMError) Is(target error) bool {
	return target == ErrCircularBOM
}
