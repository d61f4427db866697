/*
NAME
  hadamard.go

DESCRIPTION
  hadamard.go builds the Sylvester-ordered Hadamard (Walsh) matrix used to
  assign an orthogonal multi-tone code to each symbol value.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package hadamard builds the Walsh-Hadamard matrices the modulator and
// demodulator use to spread each symbol across its mode's set of tones.
package hadamard

import (
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	mu    sync.Mutex
	cache = make(map[int]*mat.Dense)
)

// Matrix returns the n x n Sylvester-construction Hadamard matrix (n a
// power of 2, entries +1/-1), memoized per size. Row r of the matrix is
// the Walsh code assigned to symbol value r.
func Matrix(n int) (*mat.Dense, error) {
	if n < 1 || n&(n-1) != 0 {
		return nil, errors.Errorf("hadamard: order %d is not a power of 2", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if h, ok := cache[n]; ok {
		return h, nil
	}

	h := mat.NewDense(1, 1, []float64{1})
	for h.RawMatrix().Rows < n {
		h = double(h)
	}
	cache[n] = h
	return h, nil
}

// double applies the Sylvester recursion H_2n = [[H_n, H_n], [H_n, -H_n]].
func double(h *mat.Dense) *mat.Dense {
	n, _ := h.Dims()
	out := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := h.At(i, j)
			out.Set(i, j, v)
			out.Set(i, n+j, v)
			out.Set(n+i, j, v)
			out.Set(n+i, n+j, -v)
		}
	}
	return out
}

// Row returns a copy of row r (the Walsh code for symbol value r) of the
// order-n Hadamard matrix.
func Row(n, r int) ([]float64, error) {
	h, err := Matrix(n)
	if err != nil {
		return nil, err
	}
	if r < 0 || r >= n {
		return nil, errors.Errorf("hadamard: row %d out of range [0,%d)", r, n)
	}
	row := make([]float64, n)
	mat.Row(row, r, h)
	return row, nil
}
