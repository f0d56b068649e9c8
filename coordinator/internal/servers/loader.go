package servers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"modfact/pkg/types"
)

// ErrBadLine marca una línea descartada del archivo de servidores.
var ErrBadLine = errors.New("servers: invalid line")

// Load abre el archivo de servidores y devuelve los endpoints válidos en orden.
// Las líneas inválidas no son fatales: se devuelven en skipped para diagnóstico.
// Un archivo ilegible o sin endpoints válidos es types.ErrInvalidArgument.
func Load(path string) (endpoints []types.Endpoint, skipped []error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: cannot open servers file: %v", types.ErrInvalidArgument, err)
	}
	defer f.Close()

	endpoints, skipped, err = Parse(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("%w: reading %s: %v", types.ErrInvalidArgument, path, err)
	}
	if len(endpoints) == 0 {
		return nil, skipped, fmt.Errorf("%w: no valid servers found in file: %s", types.ErrInvalidArgument, path)
	}
	return endpoints, skipped, nil
}

// Parse lee líneas "host:port". Las líneas vacías y los comentarios (#) se ignoran.
func Parse(r io.Reader) ([]types.Endpoint, []error, error) {
	var (
		endpoints []types.Endpoint
		skipped   []error
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ep, err := ParseLine(line)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		endpoints = append(endpoints, ep)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	return endpoints, skipped, nil
}

// ParseLine interpreta una línea "host:port". El host puede ser un IPv6 entre corchetes.
func ParseLine(line string) (types.Endpoint, error) {
	idx := strings.LastIndex(line, ":")
	if idx < 0 {
		return types.Endpoint{}, fmt.Errorf("%w: %q (expected ip:port)", ErrBadLine, line)
	}

	host := strings.TrimSpace(line[:idx])
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return types.Endpoint{}, fmt.Errorf("%w: %q (empty host)", ErrBadLine, line)
	}

	port, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
	if err != nil || port <= 0 || port > 65535 {
		return types.Endpoint{}, fmt.Errorf("%w: invalid port in %q", ErrBadLine, line)
	}

	return types.Endpoint{Host: host, Port: port}, nil
}
