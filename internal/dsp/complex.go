package dsp

import "math"

// Complex is an immutable complex value. Operations return new values;
// nothing mutates in place.
type Complex struct {
	Re float64
	Im float64
}

// Add returns c + o.
func (c Complex) Add(o Complex) Complex {
	return Complex{Re: c.Re + o.Re, Im: c.Im + o.Im}
}

// Mul returns the complex product c * o.
func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Re: c.Re*o.Re - c.Im*o.Im,
		Im: c.Re*o.Im + c.Im*o.Re,
	}
}

// Scale returns c scaled by the real factor s.
func (c Complex) Scale(s float64) Complex {
	return Complex{Re: c.Re * s, Im: c.Im * s}
}

// Conj returns the complex conjugate.
func (c Complex) Conj() Complex {
	return Complex{Re: c.Re, Im: -c.Im}
}

// Magnitude returns the Euclidean norm.
func (c Complex) Magnitude() float64 {
	return math.Hypot(c.Re, c.Im)
}

// PhaseDegrees returns atan2(Im, Re) in degrees. The result lies in
// (-180, 180]; the zero value maps to 0 by the atan2(0, 0) convention.
func (c Complex) PhaseDegrees() float64 {
	return math.Atan2(c.Im, c.Re) * 180 / math.Pi
}

// Twiddle returns the rotation factor e^(-2πi·k·idx/n) used by the DFT
// summation. n is the transform length; k the frequency bin; idx the
// sample index. The formula is total for any n > 0, but only an n equal
// to the window length has physical meaning.
func Twiddle(n float64, k, idx int) Complex {
	angle := -2 * math.Pi * float64(k) * float64(idx) / n
	return Complex{Re: math.Cos(angle), Im: math.Sin(angle)}
}
