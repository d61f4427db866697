/*
NAME
  rs.go

DESCRIPTION
  rs.go implements the Reed-Solomon codec that protects each transmitted
  packet: a systematic (56,40) code over GF(2^8) with 16 parity bytes,
  correcting up to 8 byte errors at unknown positions.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package fec implements the packet-level forward error correction codec.
//
// No third-party Go package in this module's dependency pack performs
// classical Reed-Solomon error correction at unknown byte positions
// (github.com/klauspost/reedsolomon, the one RS library in the pack, is an
// erasure code: it requires the caller to already know which shards are
// missing). The algorithm here is a direct Go expression of the classic
// Berlekamp-Massey / Forney decoder over the same generator=2, 0x11d field
// the reedsolo Python package (which the original implementation drives
// through RSCodec(RS_NSYMS)) uses, with the root-index convention (fcr=1)
// of the Phil Karn codec ported in
// doismellburning-samoyed's il2p_init.go/fx25_init.go, reexpressed without
// cgo or C-style globals.
package fec

import (
	"github.com/pkg/errors"
)

// Nsym is the number of Reed-Solomon parity bytes appended to every
// packet.
const Nsym = 16

// fcr is the first-consecutive-root exponent used for the syndrome roots
// alpha^(fcr), alpha^(fcr+1), ..., matching the root convention
// doismellburning-samoyed's fx25_init.go uses for its Phil Karn RS tables.
const fcr = 1

// ErrUncorrectable is returned by Decode when the codeword carries more
// byte errors than the code can correct (more than Nsym/2).
var ErrUncorrectable = errors.New("reed-solomon: uncorrectable codeword")

var genPoly = generatorPoly(Nsym)

// generatorPoly builds g(x) = product_{i=0}^{nsym-1} (x + alpha^(i+fcr)),
// high-order-first, the standard iterative construction of a Reed-Solomon
// generator polynomial.
func generatorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = polyMul(g, []byte{1, gfPow(generator, i+fcr)})
	}
	return g
}

// Encode appends Nsym Reed-Solomon parity bytes to msg, returning the full
// systematic codeword (msg followed by parity).
func Encode(msg []byte) []byte {
	out := make([]byte, len(msg)+len(genPoly)-1)
	copy(out, msg)
	for i := 0; i < len(msg); i++ {
		coef := out[i]
		if coef != 0 {
			for j := 1; j < len(genPoly); j++ {
				out[i+j] ^= gfMul(coef, genPoly[j])
			}
		}
	}
	copy(out, msg) // The division above clobbers the message region; restore it.
	return out
}

// Decode corrects up to Nsym/2 byte errors in codeword (at unknown
// positions) and returns the leading len(codeword)-Nsym message bytes. It
// reports the number of bytes it corrected, or ErrUncorrectable if the
// codeword carries more errors than the code can fix.
func Decode(codeword []byte) (msg []byte, errata int, err error) {
	dataLen := len(codeword) - Nsym
	synd := syndromes(codeword, Nsym)
	if allZero(synd) {
		return append([]byte(nil), codeword[:dataLen]...), 0, nil
	}

	lambda, errs, err := errorLocator(synd, Nsym)
	if err != nil {
		return nil, 0, err
	}

	errPos, err := chienSearch(lambda, len(codeword))
	if err != nil || len(errPos) != errs {
		return nil, 0, errors.WithStack(ErrUncorrectable)
	}

	corrected, err := correctErrors(codeword, synd, lambda, errPos)
	if err != nil {
		return nil, 0, err
	}

	// Defensive check: a codeword correction that doesn't re-syndrome to
	// zero means the error pattern exceeded the code's guarantees even
	// though Chien search found the "right" number of roots.
	if !allZero(syndromes(corrected, Nsym)) {
		return nil, 0, errors.WithStack(ErrUncorrectable)
	}

	return corrected[:dataLen], errs, nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// syndromes evaluates the received codeword (high-order-first) at the
// nsym roots alpha^(fcr), alpha^(fcr+1), ....
func syndromes(codeword []byte, nsym int) []byte {
	s := make([]byte, nsym)
	for i := 0; i < nsym; i++ {
		s[i] = polyEvalHigh(codeword, gfPow(generator, i+fcr))
	}
	return s
}

// polyEvalHigh evaluates a high-order-first polynomial via Horner's method.
func polyEvalHigh(p []byte, x byte) byte {
	var y byte
	for _, c := range p {
		y = gfMul(y, x) ^ c
	}
	return y
}

// errorLocator runs the Berlekamp-Massey recursion over the syndrome
// sequence (low-order-first convention: S[0] is the constant term) and
// returns the error-locator polynomial Lambda(x), low-order-first, along
// with the number of errors (its degree). It fails if the implied error
// count exceeds the code's correction capacity.
func errorLocator(synd []byte, nsym int) (lambda []byte, errs int, err error) {
	c := []byte{1} // Current candidate locator.
	b := []byte{1} // Previous candidate, used on length-increasing steps.
	l := 0
	m := 1
	var bCoef byte = 1

	for n := 0; n < nsym; n++ {
		delta := synd[n]
		for i := 1; i <= l; i++ {
			delta ^= gfMul(c[i], synd[n-i])
		}
		switch {
		case delta == 0:
			m++
		case 2*l <= n:
			t := append([]byte(nil), c...)
			c = polyAddLow(c, polyScaleShiftLow(b, gfDiv(delta, bCoef), m))
			l = n + 1 - l
			b = t
			bCoef = delta
			m = 1
		default:
			c = polyAddLow(c, polyScaleShiftLow(b, gfDiv(delta, bCoef), m))
			m++
		}
	}

	if 2*l > nsym {
		return nil, 0, errors.WithStack(ErrUncorrectable)
	}
	if len(c) > l+1 {
		c = c[:l+1]
	}
	return c, l, nil
}

// chienSearch finds the roots of lambda among alpha^-i for i in
// [0, n): the positions (high-order-first array indices) of the codeword
// bytes in error.
func chienSearch(lambda []byte, n int) ([]int, error) {
	var pos []int
	for i := 0; i < n; i++ {
		xInv := gfInverse(gfPow(generator, i))
		if polyEvalLow(lambda, xInv) == 0 {
			pos = append(pos, n-1-i)
		}
	}
	return pos, nil
}

// correctErrors computes Forney error magnitudes for the byte positions in
// errPos (high-order-first array indices) and returns a corrected copy of
// codeword.
func correctErrors(codeword, synd, lambda []byte, errPos []int) ([]byte, error) {
	n := len(codeword)
	omega := polyMul(synd, lambda)
	if len(omega) > len(synd) {
		omega = omega[:len(synd)]
	}
	lambdaDeriv := formalDerivative(lambda)

	out := append([]byte(nil), codeword...)
	for _, p := range errPos {
		i := n - 1 - p // Power of x (low-order-first locator exponent).
		xl := gfPow(generator, i)
		xlInv := gfInverse(xl)
		num := gfMul(gfPow(xl, 1-fcr), polyEvalLow(omega, xlInv))
		den := polyEvalLow(lambdaDeriv, xlInv)
		if den == 0 {
			return nil, errors.WithStack(ErrUncorrectable)
		}
		out[p] ^= gfDiv(num, den)
	}
	return out, nil
}

// formalDerivative computes Lambda'(x) for a low-order-first polynomial.
// Over GF(2^m) every even-degree term's derivative vanishes (its
// coefficient is XORed with itself an even number of times), so only the
// odd-degree coefficients survive, shifted down one degree.
func formalDerivative(p []byte) []byte {
	if len(p) < 2 {
		return nil
	}
	out := make([]byte, len(p)-1)
	for i := 1; i < len(p); i += 2 {
		out[i-1] = p[i]
	}
	return out
}
