// Package modmath agrupa la aritmética modular compartida por coordinador y worker.
package modmath

import "math/bits"

// MultModulo devuelve (a * b) mod m sin desbordar, usando el producto de 128 bits.
// m debe ser > 0.
func MultModulo(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a%m, b%m)
	return bits.Rem64(hi, lo, m)
}

// RangeProduct calcula el producto de (i mod m) para i en [begin, end], reducido mod m.
// Un rango vacío (begin > end) devuelve 1 mod m.
func RangeProduct(begin, end, m uint64) uint64 {
	result := 1 % m
	if begin > end {
		return result
	}
	for i := begin; ; i++ {
		result = MultModulo(result, i%m, m)
		if result == 0 || i == end {
			break
		}
	}
	return result
}

// Factorial calcula k! mod m de forma secuencial; se usa para verificar el resultado distribuido.
func Factorial(k, m uint64) uint64 {
	if k == 0 {
		return 1 % m
	}
	return RangeProduct(1, k, m)
}
