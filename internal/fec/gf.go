/*
NAME
  gf.go

DESCRIPTION
  gf.go implements GF(2^8) arithmetic (the Galois field used by the packet
  FEC codec) and a small set of polynomial helpers over that field.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

package fec

// fieldSize is the number of non-zero elements of GF(2^8).
const fieldSize = 255

// primPoly is the field's generator polynomial, x^8+x^4+x^3+x^2+1 — the
// same primitive polynomial used by direwolf's FX.25/IL2P Reed-Solomon
// tables (doismellburning-samoyed's fx25_init.go/il2p_init.go, genpoly
// 0x11d) and by the classic reedsolo Python codec this wire format is
// modeled on.
const primPoly = 0x11d

// generator is the field's primitive element.
const generator = 2

// The tables are built by a variable initializer rather than init(), so
// that package-level values computed from them (rs.go's genPoly) are
// initialized after them.
var expTable, logTable = buildTables()

func buildTables() (exp [fieldSize]byte, log [fieldSize + 1]byte) {
	x := byte(1)
	for i := 0; i < fieldSize; i++ {
		exp[i] = x
		log[x] = byte(i)
		x = gfMulNoTable(x, generator)
	}
	return exp, log
}

// gfMulNoTable multiplies two GF(2^8) elements by explicit carry-less
// multiplication and reduction modulo primPoly. It exists only to build
// the log/exp tables; all other arithmetic uses gfMul.
func gfMulNoTable(a, b byte) byte {
	var p int
	ai, bi := int(a), int(b)
	for bi > 0 {
		if bi&1 != 0 {
			p ^= ai
		}
		bi >>= 1
		ai <<= 1
		if ai&0x100 != 0 {
			ai ^= primPoly
		}
	}
	return byte(p)
}

// gfMul multiplies two GF(2^8) elements using the precomputed log/exp
// tables.
func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	i := int(logTable[a]) + int(logTable[b])
	if i >= fieldSize {
		i -= fieldSize
	}
	return expTable[i]
}

// gfDiv divides a by non-zero b in GF(2^8).
func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	i := int(logTable[a]) - int(logTable[b])
	if i < 0 {
		i += fieldSize
	}
	return expTable[i]
}

// gfInverse returns the multiplicative inverse of non-zero a.
func gfInverse(a byte) byte {
	return expTable[(fieldSize-int(logTable[a]))%fieldSize]
}

// gfPow raises a (conventionally the primitive element) to an integer
// power, which may be negative.
func gfPow(a byte, power int) byte {
	if a == 0 {
		if power == 0 {
			return 1
		}
		return 0
	}
	e := (int(logTable[a]) * power) % fieldSize
	if e < 0 {
		e += fieldSize
	}
	return expTable[e]
}

// polyMul computes the convolution of two coefficient slices. It is used
// both for high-order-first polynomials (generator-polynomial
// construction) and low-order-first polynomials (syndrome/error-evaluator
// algebra during decode): convolution only combines coefficients by
// positional offset, so it is representation-agnostic as long as both
// operands share the same convention.
func polyMul(a, b []byte) []byte {
	out := make([]byte, len(a)+len(b)-1)
	for i, ac := range a {
		if ac == 0 {
			continue
		}
		for j, bc := range b {
			out[i+j] ^= gfMul(ac, bc)
		}
	}
	return out
}

// polyAddLow XORs two low-order-first polynomials (coefficient of x^0
// first), left-aligned, returning a slice of length max(len(a), len(b)).
func polyAddLow(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	copy(out, a)
	for i, c := range b {
		out[i] ^= c
	}
	return out
}

// polyScaleShiftLow returns coef * x^m * b(x) for a low-order-first
// polynomial b.
func polyScaleShiftLow(b []byte, coef byte, m int) []byte {
	out := make([]byte, len(b)+m)
	for i, c := range b {
		out[i+m] = gfMul(c, coef)
	}
	return out
}

// polyEvalLow evaluates a low-order-first polynomial at x using Horner's
// method from the highest-degree term down.
func polyEvalLow(p []byte, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = gfMul(y, x) ^ p[i]
	}
	return y
}
