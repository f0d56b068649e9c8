// Package journal registra cada ejecución del coordinador en almacenes externos
// (Redis, MongoDB). Es de solo escritura: ningún cálculo lee de aquí.
package journal

import (
	"context"
	"errors"
	"time"

	"modfact/pkg/types"

	"github.com/google/uuid"
)

// EndpointRecord es el resultado de un endpoint dentro de una ejecución.
type EndpointRecord struct {
	Endpoint string
	Range    types.WorkRange
	OK       bool
	Value    uint64
	Error    string
}

type Run struct {
	ID         string
	K          uint64
	Modulus    uint64
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Endpoints  []EndpointRecord
	Outcome    types.AggregateOutcome
}

// NewRun arma el registro de una ejecución con un ID nuevo.
// tasks y results deben tener el mismo largo y orden.
func NewRun(k, mod uint64, tasks []types.Task, results []types.TaskResult, out types.AggregateOutcome, status string, started, finished time.Time) Run {
	eps := make([]EndpointRecord, len(results))
	for i, r := range results {
		rec := EndpointRecord{Endpoint: r.Endpoint.String(), OK: r.OK}
		if i < len(tasks) {
			rec.Range = tasks[i].Range
		}
		if r.OK {
			rec.Value = r.Value
		} else if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		eps[i] = rec
	}
	return Run{
		ID:         uuid.New().String(),
		K:          k,
		Modulus:    mod,
		StartedAt:  started,
		FinishedAt: finished,
		Status:     status,
		Endpoints:  eps,
		Outcome:    out,
	}
}

type Recorder interface {
	Record(ctx context.Context, run Run) error
}

// Multi envía la ejecución a todos los recorders y junta sus errores.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, run Run) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop descarta las ejecuciones; se usa cuando no hay almacenes configurados.
type Nop struct{}

func (Nop) Record(context.Context, Run) error { return nil }
