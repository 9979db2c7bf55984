package snow2

// lfsrModPoly is the SNOW-2 LFSR field's reduction polynomial
// x^8+x^7+x^5+x^3+1 (distinct from the AES field used by sBoxFunction).
const lfsrModPoly = 0xa9

// alpha is a root of x^4 + beta^23*x^3 + beta^245*x^2 + beta^48*x + beta^239,
// where beta (0x02) generates GF(2^8) under lfsrModPoly. Multiplying an
// LFSR word by alpha or alpha^-1 is implemented as a linear map on the
// word's four bytes, derived from this polynomial's companion matrix.
var (
	alphaC0, alphaC1, alphaC2, alphaC3 byte // c0=beta^239, c1=beta^48, c2=beta^245, c3=beta^23

	// alphaC0Inv and alphaK1..alphaK3 are the companion-matrix-inverse
	// coefficients used by mulAlphaInv; see the comment on that function.
	alphaC0Inv, alphaK1, alphaK2, alphaK3 byte
)

func init() {
	const beta = 0x02
	alphaC3 = gfPow(beta, 23, lfsrModPoly)
	alphaC2 = gfPow(beta, 245, lfsrModPoly)
	alphaC1 = gfPow(beta, 48, lfsrModPoly)
	alphaC0 = gfPow(beta, 239, lfsrModPoly)

	alphaC0Inv = gfInv(alphaC0, lfsrModPoly)
	alphaK1 = gfMul(alphaC1, alphaC0Inv, lfsrModPoly)
	alphaK2 = gfMul(alphaC2, alphaC0Inv, lfsrModPoly)
	alphaK3 = gfMul(alphaC3, alphaC0Inv, lfsrModPoly)
}

// mulAlpha multiplies a GF(2^32) LFSR word by alpha. Treating w as the
// byte vector (b0,b1,b2,b3) of coefficients of 1,x,x^2,x^3 in
// GF(2^8)[x]/p(x), alpha-multiplication reduces via p(x) as:
//
//	d0 = c0*b3
//	d1 = b0 + c1*b3
//	d2 = b1 + c2*b3
//	d3 = b2 + c3*b3
func mulAlpha(w uint32) uint32 {
	b0 := byte(w)
	b1 := byte(w >> 8)
	b2 := byte(w >> 16)
	b3 := byte(w >> 24)

	d0 := gfMul(b3, alphaC0, lfsrModPoly)
	d1 := b0 ^ gfMul(b3, alphaC1, lfsrModPoly)
	d2 := b1 ^ gfMul(b3, alphaC2, lfsrModPoly)
	d3 := b2 ^ gfMul(b3, alphaC3, lfsrModPoly)

	return uint32(d0) | uint32(d1)<<8 | uint32(d2)<<16 | uint32(d3)<<24
}

// mulAlphaInv multiplies a GF(2^32) LFSR word by alpha^-1: the inverse
// of the linear map in mulAlpha, obtained by inverting its companion
// matrix (solving the d-equations above for b0..b3 given d0..d3).
func mulAlphaInv(w uint32) uint32 {
	d0 := byte(w)
	d1 := byte(w >> 8)
	d2 := byte(w >> 16)
	d3 := byte(w >> 24)

	b3 := gfMul(alphaC0Inv, d0, lfsrModPoly)
	b0 := d1 ^ gfMul(alphaK1, d0, lfsrModPoly)
	b1 := d2 ^ gfMul(alphaK2, d0, lfsrModPoly)
	b2 := d3 ^ gfMul(alphaK3, d0, lfsrModPoly)

	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
}
