package coo

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/arloliu/tenpack/errs"
	"github.com/arloliu/tenpack/format"
)

// readConfig holds the reader options applied by ReadTNS.
type readConfig struct {
	pack bool
}

// ReadOption configures ReadTNS and ReadTNSFile.
type ReadOption func(*readConfig) error

// WithPacking makes the reader pack the tensor under the given format once
// all records are loaded.
func WithPacking() ReadOption {
	return func(cfg *readConfig) error {
		cfg.pack = true
		return nil
	}
}

// ReadTNS reads a coordinate tensor from a .tns stream.
//
// The format is line-oriented with one non-zero per line: the 1-based
// coordinates followed by the value, whitespace-separated. The tensor order
// is inferred from the first record and the dimensions from the per-mode
// maximum coordinate seen. An empty stream yields the empty order-0 tensor.
//
// Coordinates are converted to zero-based on load. A coordinate larger than
// the maximum signed 32-bit integer fails with errs.ErrCoordinateOverflow;
// any other malformed token fails with errs.ErrMalformedLine.
//
// The stream is borrowed: ReadTNS does not close it.
func ReadTNS(r io.Reader, f format.Format, opts ...ReadOption) (*Tensor, error) {
	cfg := &readConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	var (
		order  int
		dims   []int
		coords [][]int32
		vals   []float64
	)

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		toks := strings.Fields(scanner.Text())
		if len(toks) == 0 {
			continue
		}

		if order == 0 {
			// Infer the tensor order from the first record.
			order = len(toks) - 1
			if order == 0 {
				return nil, fmt.Errorf("%w: line %d has no coordinates", errs.ErrMalformedLine, lineno)
			}
			dims = make([]int, order)
			coords = make([][]int32, order)
		}

		if len(toks) != order+1 {
			return nil, fmt.Errorf("%w: line %d has %d tokens, want %d",
				errs.ErrMalformedLine, lineno, len(toks), order+1)
		}

		for i := range order {
			idx, err := strconv.ParseInt(toks[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d coordinate %q", errs.ErrMalformedLine, lineno, toks[i])
			}
			if idx > math.MaxInt32 {
				return nil, fmt.Errorf("%w: line %d coordinate %d", errs.ErrCoordinateOverflow, lineno, idx)
			}
			if idx < 1 {
				return nil, fmt.Errorf("%w: line %d coordinate %d is not positive",
					errs.ErrMalformedLine, lineno, idx)
			}
			coords[i] = append(coords[i], int32(idx-1))
			dims[i] = max(dims[i], int(idx))
		}

		val, err := strconv.ParseFloat(toks[order], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d value %q", errs.ErrMalformedLine, lineno, toks[order])
		}
		vals = append(vals, val)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tensor stream: %w", err)
	}

	tensor := New(dims...)
	tensor.Reserve(len(vals))

	coord := make([]int, order)
	for k, val := range vals {
		for i := range order {
			coord[i] = int(coords[i][k])
		}
		if err := tensor.Insert(coord, val); err != nil {
			return nil, err
		}
	}

	if cfg.pack {
		if _, err := tensor.Pack(f); err != nil {
			return nil, err
		}
	}

	return tensor, nil
}

// ReadTNSFile reads a coordinate tensor from a .tns file.
//
// The file is opened and closed exactly once, released on all exit paths.
func ReadTNSFile(path string, f format.Format, opts ...ReadOption) (*Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tensor file: %w", err)
	}
	defer file.Close()

	tensor, err := ReadTNS(file, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tensor, nil
}

// WriteTNS writes the tensor's records to a .tns stream in stored order,
// one record per line with 1-based coordinates.
//
// The stream is borrowed: WriteTNS does not close it.
func WriteTNS(w io.Writer, t *Tensor) error {
	bw := bufio.NewWriter(w)
	for coord, val := range t.All() {
		for _, c := range coord {
			bw.WriteString(strconv.Itoa(c + 1))
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write tensor stream: %w", err)
	}

	return nil
}

// WriteTNSFile writes the tensor to a .tns file, creating or truncating it.
func WriteTNSFile(path string, t *Tensor) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tensor file: %w", err)
	}

	if err := WriteTNS(file, t); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close tensor file: %w", err)
	}

	return nil
}
