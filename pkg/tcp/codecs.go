package tcp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"modfact/pkg/types"
)

const (
	// TaskSize es el tamaño fijo de una petición: begin, end, modulus (u64 LE).
	TaskSize = 24
	// ResultSize es el tamaño fijo de una respuesta: result (u64 LE).
	ResultSize = 8
)

// ErrMalformedMessage indica que llegaron menos bytes que el tamaño fijo del mensaje.
var ErrMalformedMessage = errors.New("tcp: malformed message")

// EncodeTask serializa la tarea en 24 bytes little-endian.
func EncodeTask(t types.Task) [TaskSize]byte {
	var buf [TaskSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], t.Range.Begin)
	binary.LittleEndian.PutUint64(buf[8:16], t.Range.End)
	binary.LittleEndian.PutUint64(buf[16:24], t.Modulus)
	return buf
}

// DecodeTask lee una tarea de los primeros 24 bytes de buf.
func DecodeTask(buf []byte) (types.Task, error) {
	if len(buf) < TaskSize {
		return types.Task{}, fmt.Errorf("%w: task needs %d bytes, got %d", ErrMalformedMessage, TaskSize, len(buf))
	}
	return types.Task{
		Range: types.WorkRange{
			Begin: binary.LittleEndian.Uint64(buf[0:8]),
			End:   binary.LittleEndian.Uint64(buf[8:16]),
		},
		Modulus: binary.LittleEndian.Uint64(buf[16:24]),
	}, nil
}

func EncodeResult(v uint64) [ResultSize]byte {
	var buf [ResultSize]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf
}

func DecodeResult(buf []byte) (uint64, error) {
	if len(buf) < ResultSize {
		return 0, fmt.Errorf("%w: result needs %d bytes, got %d", ErrMalformedMessage, ResultSize, len(buf))
	}
	return binary.LittleEndian.Uint64(buf[:ResultSize]), nil
}

// WriteTask envía la tarea completa; una escritura parcial es un error.
func WriteTask(w io.Writer, t types.Task) error {
	buf := EncodeTask(t)
	return writeFull(w, buf[:])
}

// ReadTask lee exactamente 24 bytes. Si el peer cierra antes devuelve ErrMalformedMessage.
func ReadTask(r io.Reader) (types.Task, error) {
	var buf [TaskSize]byte
	if err := readFull(r, buf[:]); err != nil {
		return types.Task{}, err
	}
	return DecodeTask(buf[:])
}

func WriteResult(w io.Writer, v uint64) error {
	buf := EncodeResult(v)
	return writeFull(w, buf[:])
}

func ReadResult(r io.Reader) (uint64, error) {
	var buf [ResultSize]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return DecodeResult(buf[:])
}

func readFull(r io.Reader, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: short read (%d of %d bytes)", ErrMalformedMessage, n, len(buf))
	}
	return err
}

func writeFull(w io.Writer, buf []byte) error {
	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}
