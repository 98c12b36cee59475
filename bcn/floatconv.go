package bcn

import "math"

// halfToFloat32 converts an IEEE 754 binary16 float to float32.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h) & 0x3FF

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign << 31)
		}
		// Subnormal -> normalized float32.
		e := int32(-14)
		for (mant & 0x400) == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3FF
		exp32 := uint32(e + 127)
		return math.Float32frombits((sign << 31) | (exp32 << 23) | (mant << 13))
	case 0x1F:
		// Inf/NaN
		return math.Float32frombits((sign << 31) | 0x7F800000 | (mant << 13))
	default:
		exp32 := exp + (127 - 15)
		return math.Float32frombits((sign << 31) | (exp32 << 23) | (mant << 13))
	}
}

func float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits >> 23) & 0xFF)
	mant := bits & 0x7FFFFF

	// Inf/NaN.
	if exp == 0xFF {
		if mant == 0 {
			return sign | 0x7C00
		}
		payload := uint16(mant>>13) & 0x03FF
		if payload == 0 {
			payload = 1
		}
		return sign | 0x7C00 | payload
	}

	exp = exp - 127 + 15

	// Subnormals/underflow.
	if exp <= 0 {
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint32(1 - exp)

		roundBit := uint32(0x1000) << shift
		mant = mant + roundBit
		return sign | uint16(mant>>(13+shift))
	}

	// Overflow -> inf.
	if exp >= 0x1F {
		return sign | 0x7C00
	}

	// Round to nearest, ties away handled by carry into the exponent.
	mant = mant + 0x1000
	if mant&0x800000 != 0 {
		mant = 0
		exp++
		if exp >= 0x1F {
			return sign | 0x7C00
		}
	}
	return sign | (uint16(exp) << 10) | uint16(mant>>13)
}

const (
	halfMax    = 0x7BFF // largest finite binary16 magnitude
	halfExpAll = 0x7C00 // exponent mask; >= this is inf or NaN
)

// sanitizeHalfUnsigned clamps a half to the finite non-negative range that
// BC6H's unsigned profile can represent. NaN maps to zero, negatives clamp
// to zero, +inf and out-of-range clamp to the largest finite half.
func sanitizeHalfUnsigned(h uint16) uint16 {
	if h&halfExpAll == halfExpAll {
		if h&0x3FF != 0 {
			return 0 // NaN
		}
		if h&0x8000 != 0 {
			return 0 // -inf
		}
		return halfMax // +inf
	}
	if h&0x8000 != 0 {
		return 0
	}
	return h
}

// sanitizeHalfSigned clamps a half to the finite range for the signed
// profile. NaN maps to zero; infinities clamp to the finite extremes.
func sanitizeHalfSigned(h uint16) uint16 {
	if h&halfExpAll == halfExpAll {
		if h&0x3FF != 0 {
			return 0 // NaN
		}
		return h&0x8000 | halfMax
	}
	return h
}
