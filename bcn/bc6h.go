package bcn

// BC6H block codec for HDR RGB in half-float texels. Blocks carry no alpha;
// decode fills it with 1.0. All arithmetic is integer: endpoints quantize
// into a mode-specific precision, interpolate on the 0..64 weight scale and
// finish back into half bit patterns, so encode and decode agree bit for
// bit with GPU samplers.

// Field lookup: [subset][endpoint][channel] into the mode layout fields.
var bc6hEPField = [2][2][3]uint8{
	{{bc6hFieldRW, bc6hFieldGW, bc6hFieldBW}, {bc6hFieldRX, bc6hFieldGX, bc6hFieldBX}},
	{{bc6hFieldRY, bc6hFieldGY, bc6hFieldBY}, {bc6hFieldRZ, bc6hFieldGZ, bc6hFieldBZ}},
}

const halfOne = 0x3C00

func signExtend(v uint32, bits int) int32 {
	shift := uint(32 - bits)
	return int32(v<<shift) >> shift
}

// bc6hUnquantize expands a quantized endpoint component to the common
// 17-bit interpolation scale.
func bc6hUnquantize(comp int32, prec int, signed bool) int32 {
	if !signed {
		switch {
		case prec >= 15:
			return comp
		case comp == 0:
			return 0
		case comp == int32(1<<uint(prec))-1:
			return 0xFFFF
		default:
			return ((comp << 16) + 0x8000) >> uint(prec)
		}
	}
	if prec >= 16 {
		return comp
	}
	neg := comp < 0
	if neg {
		comp = -comp
	}
	var unq int32
	switch {
	case comp == 0:
		unq = 0
	case comp >= int32(1<<uint(prec-1))-1:
		unq = 0x7FFF
	default:
		unq = ((comp << 15) + 0x4000) >> uint(prec-1)
	}
	if neg {
		return -unq
	}
	return unq
}

// bc6hFinish rescales an interpolated component into half-float bits.
func bc6hFinish(comp int32, signed bool) uint16 {
	if !signed {
		return uint16((comp * 31) >> 6)
	}
	if comp < 0 {
		return uint16((((-comp) * 31) >> 5)) | 0x8000
	}
	return uint16((comp * 31) >> 5)
}

// bc6hQuantize maps a sanitized half-derived integer into prec bits. The
// same scaling holds at 16-bit precision, where unquantization is the
// identity and only the finishing scale remains.
func bc6hQuantize(comp int32, prec int, signed bool) int32 {
	if !signed {
		return (comp << uint(prec)) / (halfMax + 1)
	}
	neg := comp < 0
	if neg {
		comp = -comp
	}
	q := (comp << uint(prec-1)) / (halfMax + 1)
	if neg {
		return -q
	}
	return q
}

// halfToIntBC6H converts a sanitized half bit pattern into the integer
// endpoint domain: the clamped magnitude for the unsigned profile, a
// two's-complement value for the signed profile.
func halfToIntBC6H(h uint16, signed bool) int32 {
	if !signed {
		if h > halfMax {
			return halfMax
		}
		return int32(h)
	}
	mag := int32(h & 0x7FFF)
	if mag > halfMax {
		mag = halfMax
	}
	if h&0x8000 != 0 {
		return -mag
	}
	return mag
}

// intToHalfBC6H inverts halfToIntBC6H for error accounting against
// reconstructed texels.
func intToHalfBC6H(v int32, signed bool) uint16 {
	if !signed {
		return uint16(v)
	}
	if v < 0 {
		return uint16(-v) | 0x8000
	}
	return uint16(v)
}

// decodeBC6HBlock expands one 16-byte BC6H block into 16 RGBA half texels
// (64 uint16 values). Alpha decodes as 1.0. The four reserved mode patterns
// produce an all-zero color block.
func decodeBC6HBlock(src []byte, signed bool, out []uint16) {
	r := newBlockReader(src)
	header := r.readBits(2)
	if header >= 2 {
		header |= r.readBits(3) << 2
	}
	mi := bc6hModeIndex(header)
	if mi < 0 {
		for t := 0; t < blockTexels; t++ {
			out[t*4+0] = 0
			out[t*4+1] = 0
			out[t*4+2] = 0
			out[t*4+3] = halfOne
		}
		return
	}
	m := &bc6hModes[mi]

	var f [bc6hFieldCount]uint32
	for _, run := range m.layout {
		f[run.field] |= r.readBits(int(run.count)) << run.start
	}

	partition := int(f[bc6hFieldD])

	// Decode endpoints: base W per channel, remaining endpoints either raw
	// or wrapped deltas against W.
	var uq [2][2][3]int32
	for ch := 0; ch < 3; ch++ {
		base := f[bc6hEPField[0][0][ch]]
		w := int32(base)
		if signed {
			w = signExtend(base, m.wBits)
		}
		uq[0][0][ch] = bc6hUnquantize(w, m.wBits, signed)

		mask := uint32(1<<uint(m.wBits)) - 1
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				if s == 0 && e == 0 {
					continue
				}
				raw := f[bc6hEPField[s][e][ch]]
				var v int32
				if m.transformed {
					d := signExtend(raw, m.dBits[ch])
					wrapped := uint32(w+d) & mask
					if signed {
						v = signExtend(wrapped, m.wBits)
					} else {
						v = int32(wrapped)
					}
				} else {
					if signed {
						v = signExtend(raw, m.dBits[ch])
					} else {
						v = int32(raw)
					}
				}
				uq[s][e][ch] = bc6hUnquantize(v, m.wBits, signed)
			}
		}
	}

	ib := 4
	if m.ns == 2 {
		ib = 3
	}
	weights := weightTable(ib)

	var idx [blockTexels]uint8
	for t := 0; t < blockTexels; t++ {
		bits := ib
		s := subsetIndex(m.ns, partition, t)
		if t == anchorIndex(m.ns, partition, s) {
			bits--
		}
		idx[t] = uint8(r.readBits(bits))
	}

	for t := 0; t < blockTexels; t++ {
		s := subsetIndex(m.ns, partition, t)
		w := weights[idx[t]]
		for ch := 0; ch < 3; ch++ {
			comp := bptcInterp(uq[s][0][ch], uq[s][1][ch], w)
			out[t*4+ch] = bc6hFinish(comp, signed)
		}
		out[t*4+3] = halfOne
	}
}

// bc6hTuning bounds the encoder's mode and partition search.
type bc6hTuning struct {
	partitionLimit int // partition ids examined for two-subset modes
	refine         int // least-squares refinement passes
}

type bc6hCandidate struct {
	mode      int
	partition int
	ep        [2][2][3]int32 // quantized endpoints (pre-delta)
	idx       [blockTexels]uint8
	err       uint64
}

// encodeBC6HBlock compresses 16 RGBA half texels (64 uint16 values, alpha
// ignored) into one 16-byte BC6H block. NaN inputs encode as zero;
// infinities and, in the unsigned profile, negative values clamp to the
// representable range.
func encodeBC6HBlock(texels []uint16, signed bool, tune *bc6hTuning, dst []byte) {
	// Sanitize and move into the integer endpoint domain.
	var ints [blockTexels][3]int32
	var px [blockTexels * 4]float32
	for t := 0; t < blockTexels; t++ {
		for ch := 0; ch < 3; ch++ {
			h := texels[t*4+ch]
			if signed {
				h = sanitizeHalfSigned(h)
			} else {
				h = sanitizeHalfUnsigned(h)
			}
			v := halfToIntBC6H(h, signed)
			ints[t][ch] = v
			px[t*4+ch] = float32(v)
		}
		px[t*4+3] = 0
	}

	best := bc6hCandidate{err: ^uint64(0)}
	for mi := range bc6hModes {
		trialBC6HMode(&ints, px[:], mi, signed, tune, &best)
	}
	emitBC6H(&best, dst)
}

func trialBC6HMode(ints *[blockTexels][3]int32, px []float32, mi int, signed bool, tune *bc6hTuning, best *bc6hCandidate) {
	m := &bc6hModes[mi]
	if m.ns == 1 {
		c := fitBC6H(ints, px, mi, 0, signed, tune.refine)
		if c.err < best.err {
			*best = c
		}
		return
	}
	limit := 32
	if limit > tune.partitionLimit {
		limit = tune.partitionLimit
	}
	for p := 0; p < limit; p++ {
		c := fitBC6H(ints, px, mi, p, signed, tune.refine)
		if c.err < best.err {
			*best = c
		}
	}
}

func fitBC6H(ints *[blockTexels][3]int32, px []float32, mi, partition int, signed bool, refine int) bc6hCandidate {
	m := &bc6hModes[mi]
	c := bc6hCandidate{mode: mi, partition: partition, err: ^uint64(0)}

	ib := 4
	if m.ns == 2 {
		ib = 3
	}
	weights := weightTable(ib)

	var members [2][]int
	for t := 0; t < blockTexels; t++ {
		s := subsetIndex(m.ns, partition, t)
		members[s] = append(members[s], t)
	}

	var e0f, e1f [2]vec4
	for s := 0; s < m.ns; s++ {
		mem := members[s]
		if len(mem) == 0 {
			continue
		}
		mean, axis := computeMeanAxis(px, mem, 3)
		e0f[s], e1f[s] = projectEndpoints(px, mem, mean, axis, 3)

		// Orient so the anchor texel sits near endpoint 0: its stored
		// index drops the MSB, so it has to land in the lower half.
		a := anchorIndex(m.ns, partition, s)
		var dot float32
		for ch := 0; ch < 3; ch++ {
			d0 := px[a*4+ch] - e0f[s][ch]
			d1 := px[a*4+ch] - e1f[s][ch]
			dot += d0*d0 - d1*d1
		}
		if dot > 0 {
			e0f[s], e1f[s] = e1f[s], e0f[s]
		}
	}

	lim := int32(halfMax)
	lo := int32(0)
	if signed {
		lo = -lim
	}

	solve := func() {
		quantizeBC6HEndpoints(m, &e0f, &e1f, lo, lim, signed, &c)
		c.err = assignBC6HIndices(ints, m, partition, signed, weights, ib, &c)
	}
	solve()

	bestEP := c.ep
	bestIdx := c.idx
	bestErr := c.err

	for pass := 0; pass < refine; pass++ {
		improved := false
		for s := 0; s < m.ns; s++ {
			mem := members[s]
			if len(mem) == 0 {
				continue
			}
			idxScratch := make([]uint8, len(mem))
			for i, t := range mem {
				idxScratch[i] = c.idx[t]
			}
			if lsRefineEndpoints(px, mem, idxScratch, weights, 3, &e0f[s], &e1f[s]) {
				improved = true
			}
		}
		if !improved {
			break
		}
		solve()
		if c.err >= bestErr {
			break
		}
		bestEP = c.ep
		bestIdx = c.idx
		bestErr = c.err
	}

	c.ep = bestEP
	c.idx = bestIdx
	c.err = bestErr
	return c
}

// quantizeBC6HEndpoints quantizes float endpoints into the mode's stored
// precision, clamping transformed deltas into their signed field range.
func quantizeBC6HEndpoints(m *bc6hModeInfo, e0f, e1f *[2]vec4, lo, hi int32, signed bool, c *bc6hCandidate) {
	round := func(v float32) int32 {
		if v >= 0 {
			return int32(v + 0.5)
		}
		return int32(v - 0.5)
	}
	for s := 0; s < m.ns; s++ {
		for ch := 0; ch < 3; ch++ {
			c.ep[s][0][ch] = bc6hQuantize(clampI(round(e0f[s][ch]), lo, hi), m.wBits, signed)
			c.ep[s][1][ch] = bc6hQuantize(clampI(round(e1f[s][ch]), lo, hi), m.wBits, signed)
		}
	}
	if !m.transformed {
		return
	}
	// Deltas are stored relative to W. Clamp into the field range and also
	// keep the reconstructed endpoint representable, since decode wraps
	// out-of-range sums instead of saturating.
	eLo := int32(0)
	eHi := int32(1<<uint(m.wBits)) - 1
	if signed {
		eLo = -(int32(1) << uint(m.wBits-1))
		eHi = (int32(1) << uint(m.wBits-1)) - 1
	}
	for ch := 0; ch < 3; ch++ {
		w := c.ep[0][0][ch]
		dLo := -(int32(1) << uint(m.dBits[ch]-1))
		dHi := (int32(1) << uint(m.dBits[ch]-1)) - 1
		if dLo < eLo-w {
			dLo = eLo - w
		}
		if dHi > eHi-w {
			dHi = eHi - w
		}
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				if s == 0 && e == 0 {
					continue
				}
				d := clampI(c.ep[s][e][ch]-w, dLo, dHi)
				c.ep[s][e][ch] = w + d
			}
		}
	}
}

// assignBC6HIndices reconstructs the candidate's palette, picks the nearest
// entry per texel and returns the total squared error in the integer
// endpoint domain.
func assignBC6HIndices(ints *[blockTexels][3]int32, m *bc6hModeInfo, partition int, signed bool, weights []uint32, ib int, c *bc6hCandidate) uint64 {
	var uq [2][2][3]int32
	for s := 0; s < m.ns; s++ {
		for e := 0; e < 2; e++ {
			for ch := 0; ch < 3; ch++ {
				uq[s][e][ch] = bc6hUnquantize(c.ep[s][e][ch], m.wBits, signed)
			}
		}
	}

	var err uint64
	for t := 0; t < blockTexels; t++ {
		s := subsetIndex(m.ns, partition, t)
		bestE := uint64(1) << 62
		bestI := uint8(0)
		for i, w := range weights {
			var e uint64
			for ch := 0; ch < 3; ch++ {
				comp := bptcInterp(uq[s][0][ch], uq[s][1][ch], w)
				rec := halfToIntBC6H(bc6hFinish(comp, signed), signed)
				d := int64(ints[t][ch]) - int64(rec)
				e += uint64(d * d)
			}
			if e < bestE {
				bestE = e
				bestI = uint8(i)
			}
		}
		// Anchor indices lose their MSB in storage; cap instead of
		// re-fitting when quantization pushed the anchor across.
		if t == anchorIndex(m.ns, partition, s) && bestI >= uint8(1<<uint(ib-1)) {
			bestI = uint8(1<<uint(ib-1)) - 1
			var e uint64
			for ch := 0; ch < 3; ch++ {
				comp := bptcInterp(uq[s][0][ch], uq[s][1][ch], weights[bestI])
				rec := halfToIntBC6H(bc6hFinish(comp, signed), signed)
				d := int64(ints[t][ch]) - int64(rec)
				e += uint64(d * d)
			}
			bestE = e
		}
		c.idx[t] = bestI
		err += bestE
	}
	return err
}

// emitBC6H serializes a candidate through the mode's layout runs.
func emitBC6H(c *bc6hCandidate, dst []byte) {
	m := &bc6hModes[c.mode]

	var f [bc6hFieldCount]uint32
	f[bc6hFieldD] = uint32(c.partition)
	for ch := 0; ch < 3; ch++ {
		w := c.ep[0][0][ch]
		f[bc6hEPField[0][0][ch]] = uint32(w) & (1<<uint(m.wBits) - 1)
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				if s == 0 && e == 0 {
					continue
				}
				v := c.ep[s][e][ch]
				var raw uint32
				if m.transformed {
					raw = uint32(v-w) & (1<<uint(m.dBits[ch]) - 1)
				} else {
					raw = uint32(v) & (1<<uint(m.dBits[ch]) - 1)
				}
				f[bc6hEPField[s][e][ch]] = raw
			}
		}
	}

	w := newBlockWriter(16)
	w.writeBits(m.headerValue, m.headerBits)
	for _, run := range m.layout {
		w.writeBits(f[run.field]>>run.start, int(run.count))
	}

	ib := 4
	if m.ns == 2 {
		ib = 3
	}
	for t := 0; t < blockTexels; t++ {
		bits := ib
		s := subsetIndex(m.ns, c.partition, t)
		if t == anchorIndex(m.ns, c.partition, s) {
			bits--
		}
		w.writeBits(uint32(c.idx[t]), bits)
	}
	w.store(dst)
}
