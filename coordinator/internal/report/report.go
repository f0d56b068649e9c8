package report

import (
	"io"

	"modfact/pkg/modmath"
	"modfact/pkg/styles"
	"modfact/pkg/types"
)

// Status clasifica el resultado de una ejecución.
type Status int

const (
	StatusFailed Status = iota
	StatusPartial
	StatusFull
)

func (s Status) String() string {
	switch s {
	case StatusFull:
		return "full"
	case StatusPartial:
		return "partial"
	}
	return "failed"
}

func Classify(o types.AggregateOutcome) Status {
	switch {
	case o.Full():
		return StatusFull
	case o.Partial():
		return StatusPartial
	}
	return StatusFailed
}

type Options struct {
	// AllowPartial hace que un resultado parcial termine con código 0.
	AllowPartial bool
	// Verify recalcula k! mod m secuencialmente cuando todos los endpoints respondieron.
	Verify bool
	// FailOnMismatch hace que una verificación fallida termine con código 1.
	FailOnMismatch bool
}

// Print muestra el resumen de la ejecución y devuelve el código de salida del proceso.
func Print(w io.Writer, results []types.TaskResult, out types.AggregateOutcome, k, mod uint64, opts Options) int {
	styles.FprintFS(w, styles.Default, "\n=== Collecting results ===")
	for _, r := range results {
		if r.OK {
			styles.FprintFS(w, styles.Default, "Server %s: result = %d", r.Endpoint, r.Value)
		} else {
			styles.FprintFS(w, styles.Error, "Server %s: FAILED (%v)", r.Endpoint, r.Err)
		}
	}

	styles.FprintFS(w, styles.Default, "\n=== Final Results ===")
	switch Classify(out) {
	case StatusFull:
		styles.FprintFS(w, styles.Success, "All %d servers completed successfully", out.Total)
		styles.FprintFS(w, styles.Success, "Final result: %d! mod %d = %d", k, mod, out.Product)
		if opts.Verify {
			seq := modmath.Factorial(k, mod)
			styles.FprintFS(w, styles.Info, "Verification (sequential): %d", seq)
			if seq == out.Product {
				styles.FprintFS(w, styles.Success, "Results match: YES")
			} else {
				styles.FprintFS(w, styles.Error, "Results match: NO")
				if opts.FailOnMismatch {
					return 1
				}
			}
		}
		return 0
	case StatusPartial:
		styles.FprintFS(w, styles.Warning, "%d of %d servers completed successfully", out.Succeeded, out.Total)
		styles.FprintFS(w, styles.Warning, "Partial result: %d! mod %d = %d", k, mod, out.Product)
		styles.FprintFS(w, styles.Warning, "WARNING: Result may be incorrect due to server failures")
		if opts.AllowPartial {
			return 0
		}
		return 1
	default:
		styles.FprintFS(w, styles.Error, "All servers failed. Cannot compute result.")
		return 1
	}
}
