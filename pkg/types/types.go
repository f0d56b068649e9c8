package types

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrInvalidArgument marca errores fatales detectados antes del dispatch:
// k o mod no positivos, archivo de servidores ilegible, ninguna dirección válida.
var ErrInvalidArgument = errors.New("invalid argument")

// WorkerState representa el estado de una conexión en el worker.
type WorkerState int

const (
	StListening WorkerState = iota
	StReading
	StComputing
	StWriting
	StClosed
)

func (s WorkerState) String() string {
	switch s {
	case StListening:
		return "listening"
	case StReading:
		return "reading"
	case StComputing:
		return "computing"
	case StWriting:
		return "writing"
	case StClosed:
		return "closed"
	}
	return "unknown"
}

// Endpoint identifica un worker remoto. Dos endpoints iguales son objetivos independientes.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// WorkRange es un intervalo cerrado [Begin, End].
type WorkRange struct {
	Begin uint64 `json:"begin"`
	End   uint64 `json:"end"`
}

// Len devuelve la cantidad de enteros del rango.
func (r WorkRange) Len() uint64 {
	if r.End < r.Begin {
		return 0
	}
	return r.End - r.Begin + 1
}

func (r WorkRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Begin, r.End)
}

// Task es la unidad que se envía a un endpoint.
type Task struct {
	Range   WorkRange `json:"range"`
	Modulus uint64    `json:"modulus"`
}

// TaskResult es el resultado de un intento contra un endpoint.
// Value no está definido cuando OK es false; Err guarda la causa.
type TaskResult struct {
	Endpoint Endpoint
	Value    uint64
	OK       bool
	Err      error
}

// AggregateOutcome resume el producto final y cuántos endpoints respondieron.
type AggregateOutcome struct {
	Product   uint64 `json:"product"`
	Succeeded int    `json:"succeeded"`
	Total     int    `json:"total"`
}

// Full indica que todos los endpoints respondieron.
func (o AggregateOutcome) Full() bool {
	return o.Total > 0 && o.Succeeded == o.Total
}

// Partial indica que respondió al menos uno, pero no todos.
func (o AggregateOutcome) Partial() bool {
	return o.Succeeded > 0 && o.Succeeded < o.Total
}
