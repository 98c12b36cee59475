package bcn

import "math"

// Endpoint selection: project the texels of a block (or subset) onto their
// dominant color-variation axis, seed endpoints from the extremal
// projections, then refine with a least-squares solve against the assigned
// indices. The search is stateless; each call owns all of its scratch.

type vec4 [4]float32

// computeMeanAxis returns the centroid and the principal variation axis of
// the member texels. px is flat RGBA with stride 4; members selects texel
// indices. Only the first nch channels contribute.
//
// The axis is found by power iteration on the covariance matrix, seeded
// from the covariance row of the highest-variance channel. For degenerate
// (single color) inputs the axis collapses to zero and callers fall back
// to a flat block.
func computeMeanAxis(px []float32, members []int, nch int) (mean, axis vec4) {
	n := len(members)
	if n == 0 {
		return mean, axis
	}

	for _, t := range members {
		for c := 0; c < nch; c++ {
			mean[c] += px[t*4+c]
		}
	}
	inv := 1.0 / float32(n)
	for c := 0; c < nch; c++ {
		mean[c] *= inv
	}

	var cov [4][4]float32
	for _, t := range members {
		var d vec4
		for c := 0; c < nch; c++ {
			d[c] = px[t*4+c] - mean[c]
		}
		for i := 0; i < nch; i++ {
			for j := i; j < nch; j++ {
				cov[i][j] += d[i] * d[j]
			}
		}
	}
	for i := 0; i < nch; i++ {
		for j := 0; j < i; j++ {
			cov[i][j] = cov[j][i]
		}
	}

	// Seed from the leading channel's covariance row. The row carries the
	// correlation signs, so anti-correlated channels cannot cancel it the
	// way an all-positive value-range seed can.
	lead := 0
	for c := 1; c < nch; c++ {
		if cov[c][c] > cov[lead][lead] {
			lead = c
		}
	}
	for c := 0; c < nch; c++ {
		axis[c] = cov[lead][c]
	}
	if normalize(&axis, nch) == 0 {
		return mean, axis
	}

	for iter := 0; iter < 8; iter++ {
		var next vec4
		for i := 0; i < nch; i++ {
			var sum float32
			for j := 0; j < nch; j++ {
				sum += cov[i][j] * axis[j]
			}
			next[i] = sum
		}
		if normalize(&next, nch) == 0 {
			break
		}
		axis = next
	}
	return mean, axis
}

func normalize(v *vec4, nch int) float32 {
	var len2 float32
	for c := 0; c < nch; c++ {
		len2 += v[c] * v[c]
	}
	if len2 <= 1e-12 {
		for c := range v {
			v[c] = 0
		}
		return 0
	}
	inv := 1.0 / sqrtf(len2)
	for c := 0; c < nch; c++ {
		v[c] *= inv
	}
	return len2
}

func sqrtf(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// projectEndpoints seeds an endpoint pair from the extremal projections of
// the member texels along the axis. Ties project to identical endpoints and
// yield a flat block.
func projectEndpoints(px []float32, members []int, mean, axis vec4, nch int) (e0, e1 vec4) {
	tLo := float32(1e30)
	tHi := float32(-1e30)
	for _, t := range members {
		var dot float32
		for c := 0; c < nch; c++ {
			dot += (px[t*4+c] - mean[c]) * axis[c]
		}
		if dot < tLo {
			tLo = dot
		}
		if dot > tHi {
			tHi = dot
		}
	}
	for c := 0; c < nch; c++ {
		e0[c] = mean[c] + tLo*axis[c]
		e1[c] = mean[c] + tHi*axis[c]
	}
	return e0, e1
}

// lsRefineEndpoints solves the weighted least-squares system for the
// endpoint pair that minimizes reconstruction error given fixed index
// assignments. weights is the format's integer ramp table (0..64 scale).
// Returns false when the system is singular (all texels on one index).
func lsRefineEndpoints(px []float32, members []int, indices []uint8, weights []uint32, nch int, e0, e1 *vec4) bool {
	var a, b, c float32
	var x, y vec4
	for i, t := range members {
		w := float32(weights[indices[i]]) * (1.0 / 64.0)
		iw := 1 - w
		a += iw * iw
		b += iw * w
		c += w * w
		for ch := 0; ch < nch; ch++ {
			v := px[t*4+ch]
			x[ch] += iw * v
			y[ch] += w * v
		}
	}
	det := a*c - b*b
	if det == 0 {
		return false
	}
	inv := 1.0 / det
	for ch := 0; ch < nch; ch++ {
		e0[ch] = (c*x[ch] - b*y[ch]) * inv
		e1[ch] = (a*y[ch] - b*x[ch]) * inv
	}
	return true
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// allTexels is the identity membership for whole-block fits.
var allTexels = func() []int {
	m := make([]int, blockTexels)
	for i := range m {
		m[i] = i
	}
	return m
}()
