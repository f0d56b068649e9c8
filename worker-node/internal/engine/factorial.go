package engine

import (
	"sync"

	"modfact/pkg/modmath"
	"modfact/pkg/types"
)

// PartialProduct calcula el producto de (i mod m) para i en el rango de la tarea, mod m.
// Con threads > 1 el rango se reparte entre goroutines y los parciales se multiplican
// en orden de índice; el resultado es el mismo que el secuencial.
func PartialProduct(task types.Task, threads int) uint64 {
	r := task.Range
	m := task.Modulus
	if threads < 1 {
		threads = 1
	}
	if n := r.Len(); n < uint64(threads) {
		threads = int(n)
	}
	if threads <= 1 {
		return modmath.RangeProduct(r.Begin, r.End, m)
	}

	blockSize := r.Len() / uint64(threads)
	remainder := r.Len() % uint64(threads)

	partials := make([]uint64, threads)
	var wg sync.WaitGroup
	begin := r.Begin
	for i := 0; i < threads; i++ {
		size := blockSize
		if uint64(i) < remainder {
			size++
		}
		end := begin + size - 1

		wg.Add(1)
		go func(i int, begin, end uint64) {
			defer wg.Done()
			partials[i] = modmath.RangeProduct(begin, end, m)
		}(i, begin, end)

		begin = end + 1
	}
	wg.Wait()

	result := 1 % m
	for _, p := range partials {
		result = modmath.MultModulo(result, p, m)
	}
	return result
}
