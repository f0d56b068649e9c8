package partition

import (
	"fmt"

	"modfact/pkg/types"
)

// Partition divide [1, k] en n rangos contiguos y disjuntos.
//
// Con base = k / n y rem = k % n, los primeros rem rangos reciben base+1
// números y el resto base. El reparto del resto al inicio es el comportamiento
// esperado por los reportes y los tests; no cambiarlo.
//
// El llamador debe garantizar 1 <= n <= k.
func Partition(k uint64, n int) ([]types.WorkRange, error) {
	if k == 0 {
		return nil, fmt.Errorf("%w: k must be >= 1", types.ErrInvalidArgument)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be >= 1, got %d", types.ErrInvalidArgument, n)
	}
	if uint64(n) > k {
		return nil, fmt.Errorf("%w: n (%d) must not exceed k (%d)", types.ErrInvalidArgument, n, k)
	}

	blockSize := k / uint64(n)
	remainder := k % uint64(n)

	ranges := make([]types.WorkRange, n)
	current := uint64(1)
	for i := 0; i < n; i++ {
		size := blockSize
		if uint64(i) < remainder {
			size++
		}
		ranges[i] = types.WorkRange{Begin: current, End: current + size - 1}
		current += size
	}
	return ranges, nil
}
