package aggregate

import (
	"modfact/pkg/modmath"
	"modfact/pkg/types"
)

// Aggregate multiplica, en orden de índice, los valores de los resultados exitosos.
// Se llama una sola vez, después de que terminaron todos los intentos.
func Aggregate(results []types.TaskResult, modulus uint64) types.AggregateOutcome {
	out := types.AggregateOutcome{Product: 1 % modulus, Total: len(results)}
	for _, r := range results {
		if !r.OK {
			continue
		}
		out.Product = modmath.MultModulo(out.Product, r.Value, modulus)
		out.Succeeded++
	}
	return out
}
