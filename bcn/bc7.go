package bcn

// BC7 block codec. Every 16-byte block starts with a unary mode indicator
// (the position of the lowest set bit of byte 0 is the mode number); the
// mode fixes subset count, endpoint precision, p-bit form, rotation and
// index widths. All field layouts are driven by the bc7Modes table so the
// encoder and decoder cannot disagree.

// decodeBC7Block expands one 16-byte BC7 block into 16 RGBA8 texels.
//
// Every bit pattern decodes deterministically: the reserved no-mode-bit
// pattern yields RGBA(0,0,0,0), matching GPU behavior for the reserved
// encoding.
func decodeBC7Block(src []byte, out []byte) {
	mode := bc7BlockMode(src[0])
	if mode < 0 {
		for i := 0; i < blockTexels*4; i++ {
			out[i] = 0
		}
		return
	}
	m := &bc7Modes[mode]

	r := newBlockReader(src)
	r.readBits(mode + 1)

	partition := int(r.readBits(m.pb))
	rotation := int(r.readBits(m.rb))
	idxSel := int(r.readBits(m.isb))

	// Raw endpoint fields, channel-major then subset-major as stored.
	var ep [3][2][4]uint32
	for ch := 0; ch < 3; ch++ {
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				ep[s][e][ch] = r.readBits(m.cb)
			}
		}
	}
	if m.ab > 0 {
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				ep[s][e][3] = r.readBits(m.ab)
			}
		}
	}

	var pbits [3][2]uint32
	if m.epb > 0 {
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				pbits[s][e] = r.readBit()
			}
		}
	} else if m.spb > 0 {
		for s := 0; s < m.ns; s++ {
			p := r.readBit()
			pbits[s][0] = p
			pbits[s][1] = p
		}
	}

	// Expand endpoints to 8 bits, substituting the p-bit as the extra LSB.
	hasP := m.epb > 0 || m.spb > 0
	var e8 [3][2][4]uint8
	for s := 0; s < m.ns; s++ {
		for e := 0; e < 2; e++ {
			for ch := 0; ch < 3; ch++ {
				v, prec := ep[s][e][ch], m.cb
				if hasP {
					v = v<<1 | pbits[s][e]
					prec++
				}
				e8[s][e][ch] = expandUN8(v, prec)
			}
			if m.ab > 0 {
				v, prec := ep[s][e][3], m.ab
				if hasP {
					v = v<<1 | pbits[s][e]
					prec++
				}
				e8[s][e][3] = expandUN8(v, prec)
			} else {
				e8[s][e][3] = 255
			}
		}
	}

	var idx1, idx2 [blockTexels]uint8
	readBC7Indices(&r, m.ns, partition, m.ib, &idx1)
	if m.ib2 > 0 {
		readBC7Indices(&r, 1, 0, m.ib2, &idx2)
	}

	w1 := weightTable(m.ib)
	colorW, alphaW := w1, w1
	colorIdx, alphaIdx := &idx1, &idx1
	if m.ib2 > 0 {
		alphaW = weightTable(m.ib2)
		alphaIdx = &idx2
	}
	if idxSel == 1 {
		colorW, alphaW = alphaW, colorW
		colorIdx, alphaIdx = alphaIdx, colorIdx
	}

	for t := 0; t < blockTexels; t++ {
		s := subsetIndex(m.ns, partition, t)
		cw := colorW[colorIdx[t]]
		aw := alphaW[alphaIdx[t]]

		var px [4]uint8
		for ch := 0; ch < 3; ch++ {
			px[ch] = uint8(bptcInterp(int32(e8[s][0][ch]), int32(e8[s][1][ch]), cw))
		}
		px[3] = uint8(bptcInterp(int32(e8[s][0][3]), int32(e8[s][1][3]), aw))

		if rotation != 0 {
			px[rotation-1], px[3] = px[3], px[rotation-1]
		}

		out[t*4+0] = px[0]
		out[t*4+1] = px[1]
		out[t*4+2] = px[2]
		out[t*4+3] = px[3]
	}
}

func readBC7Indices(r *blockReader, ns, partition, width int, idx *[blockTexels]uint8) {
	for t := 0; t < blockTexels; t++ {
		bits := width
		s := subsetIndex(ns, partition, t)
		if t == anchorIndex(ns, partition, s) {
			bits--
		}
		idx[t] = uint8(r.readBits(bits))
	}
}

// bc7Tuning bounds the encoder's mode/partition search. Derived from the
// encode quality preset.
type bc7Tuning struct {
	partitionLimit      int  // partition ids examined per multi-subset mode
	partitionCandidates int  // candidates kept for the full fit
	refine              int  // least-squares refinement passes
	fastSkip            bool // skip alpha modes for opaque blocks and vice versa
}

// bc7Candidate is one fully specified block encoding.
type bc7Candidate struct {
	mode      int
	partition int
	rotation  int
	idxSel    int

	ep    [3][2][4]uint32 // quantized endpoints, stored field values
	pbits [3][2]uint32
	idx1  [blockTexels]uint8
	idx2  [blockTexels]uint8

	err uint64
}

// encodeBC7Block compresses 16 RGBA8 texels into one 16-byte BC7 block,
// trying modes in ascending order and keeping the lowest total error.
// Ties keep the earlier (simpler) trial.
func encodeBC7Block(texels []byte, tune *bc7Tuning, dst []byte) {
	opaque := true
	for t := 0; t < blockTexels; t++ {
		if texels[t*4+3] != 255 {
			opaque = false
			break
		}
	}

	best := bc7Candidate{err: ^uint64(0)}
	for mode := 0; mode < 8; mode++ {
		m := &bc7Modes[mode]
		if tune.fastSkip {
			if opaque && m.ab > 0 && mode != 6 {
				continue
			}
			if !opaque && m.ab == 0 {
				continue
			}
		}
		trialBC7Mode(texels, mode, tune, &best)
	}

	// A candidate always exists: mode 6 (or 5) is never skipped for the
	// block's alpha class.
	emitBC7(&best, dst)
}

func trialBC7Mode(texels []byte, mode int, tune *bc7Tuning, best *bc7Candidate) {
	m := &bc7Modes[mode]

	if m.ns == 1 {
		rotations := 1 << uint(m.rb)
		selectors := 1 << uint(m.isb)
		for rot := 0; rot < rotations; rot++ {
			for sel := 0; sel < selectors; sel++ {
				c := fitBC7(texels, mode, 0, rot, sel, tune.refine)
				if c.err < best.err {
					*best = c
				}
			}
		}
		return
	}

	// Rank partitions by a cheap per-subset variance proxy, then run the
	// full fit only on the best few.
	limit := 1 << uint(m.pb)
	if limit > tune.partitionLimit {
		limit = tune.partitionLimit
	}
	type ranked struct {
		partition int
		score     float32
	}
	order := make([]ranked, 0, limit)
	for p := 0; p < limit; p++ {
		order = append(order, ranked{p, partitionScore(texels, m.ns, p)})
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].score < order[j-1].score; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	n := tune.partitionCandidates
	if n > len(order) {
		n = len(order)
	}
	for i := 0; i < n; i++ {
		c := fitBC7(texels, mode, order[i].partition, 0, 0, tune.refine)
		if c.err < best.err {
			*best = c
		}
	}
}

// partitionScore sums each subset's squared deviation from its mean; lower
// means the partition separates the block's colors better.
func partitionScore(texels []byte, ns, partition int) float32 {
	var sum [3][4]float32
	var sumSq [3][4]float32
	var count [3]float32
	for t := 0; t < blockTexels; t++ {
		s := subsetIndex(ns, partition, t)
		count[s]++
		for ch := 0; ch < 4; ch++ {
			v := float32(texels[t*4+ch])
			sum[s][ch] += v
			sumSq[s][ch] += v * v
		}
	}
	var score float32
	for s := 0; s < ns; s++ {
		if count[s] == 0 {
			continue
		}
		for ch := 0; ch < 4; ch++ {
			score += sumSq[s][ch] - sum[s][ch]*sum[s][ch]/count[s]
		}
	}
	return score
}

// fitBC7 produces a complete candidate for one mode/partition/rotation/
// selector combination.
func fitBC7(texels []byte, mode, partition, rotation, idxSel, refine int) bc7Candidate {
	m := &bc7Modes[mode]
	c := bc7Candidate{mode: mode, partition: partition, rotation: rotation, idxSel: idxSel}

	// Rotation swaps a color channel into the alpha slot before encoding;
	// decode swaps it back, so fitting happens in rotated space.
	var rot [blockTexels * 4]uint8
	copy(rot[:], texels[:blockTexels*4])
	if rotation != 0 {
		for t := 0; t < blockTexels; t++ {
			rot[t*4+rotation-1], rot[t*4+3] = rot[t*4+3], rot[t*4+rotation-1]
		}
	}

	var px [blockTexels * 4]float32
	for i := range rot {
		px[i] = float32(rot[i])
	}

	colorBits, alphaBits := m.ib, m.ib
	if m.ib2 > 0 {
		alphaBits = m.ib2
	}
	if idxSel == 1 {
		colorBits, alphaBits = alphaBits, colorBits
	}

	var members [3][]int
	for t := 0; t < blockTexels; t++ {
		s := subsetIndex(m.ns, partition, t)
		members[s] = append(members[s], t)
	}

	// Decoded 8-bit endpoints for index assignment and error accounting.
	var e8 [3][2][4]uint8
	var colorIdx, alphaIdx [blockTexels]uint8

	fitSubset := func(s int) {
		mem := members[s]
		if len(mem) == 0 {
			return
		}
		nch := 3
		if m.ab > 0 && m.ib2 == 0 {
			nch = 4 // unified RGBA endpoints (modes 6, 7)
		}

		mean, axis := computeMeanAxis(px[:], mem, nch)
		e0, e1 := projectEndpoints(px[:], mem, mean, axis, nch)

		cw := weightTable(colorBits)
		idxScratch := make([]uint8, len(mem))

		quantize := func(e0f, e1f vec4) {
			quantizeBC7Endpoints(m, s, e0f, e1f, &c, &e8)
		}
		assign := func() uint64 {
			var err uint64
			for _, t := range mem {
				bi, be := nearestBC7(rot[:], t, &e8[s], cw, nch)
				colorIdx[t] = bi
				err += be
			}
			return err
		}

		quantize(e0, e1)
		bestErr := assign()
		bestE8 := e8[s]
		bestEP := c.ep[s]
		bestPB := c.pbits[s]
		var bestIdx [blockTexels]uint8
		for _, t := range mem {
			bestIdx[t] = colorIdx[t]
		}

		for pass := 0; pass < refine; pass++ {
			for i, t := range mem {
				idxScratch[i] = colorIdx[t]
			}
			if !lsRefineEndpoints(px[:], mem, idxScratch, cw, nch, &e0, &e1) {
				break
			}
			quantize(e0, e1)
			err := assign()
			if err >= bestErr {
				break
			}
			bestErr = err
			bestE8 = e8[s]
			bestEP = c.ep[s]
			bestPB = c.pbits[s]
			for _, t := range mem {
				bestIdx[t] = colorIdx[t]
			}
		}

		e8[s] = bestE8
		c.ep[s] = bestEP
		c.pbits[s] = bestPB
		for _, t := range mem {
			colorIdx[t] = bestIdx[t]
		}
		c.err += bestErr
	}

	for s := 0; s < m.ns; s++ {
		fitSubset(s)
	}

	// Separate scalar alpha plane for modes with a secondary index.
	if m.ib2 > 0 {
		c.err += fitBC7Alpha(&rot, m, alphaBits, &c, &e8, &alphaIdx)
	}

	// Anchor constraint: the stored index at each anchor texel drops its
	// MSB, so flip endpoint pairs until anchors land in the lower half.
	fixBC7Anchors(m, partition, idxSel, &c, &colorIdx, &alphaIdx)
	return c
}

// quantizeBC7Endpoints quantizes a float endpoint pair for subset s into
// the candidate's raw fields and mirrors the decoded 8-bit values into e8.
func quantizeBC7Endpoints(m *bc7ModeInfo, s int, e0, e1 vec4, c *bc7Candidate, e8 *[3][2][4]uint8) {
	nch := 3
	if m.ab > 0 && m.ib2 == 0 {
		nch = 4
	}

	quantOne := func(e vec4, prec int, p int) (raw [4]uint32, dec [4]uint8, qerr uint64) {
		for ch := 0; ch < nch; ch++ {
			bits := m.cb
			if ch == 3 {
				bits = m.ab
			}
			q := quantizeWithParity(e[ch], bits, prec, p)
			raw[ch] = q >> uint(prec) // the p-bit is stored separately
			dec[ch] = expandUN8(q, bits+prec)
			d := int64(e[ch]+0.5) - int64(dec[ch])
			qerr += uint64(d * d)
		}
		return raw, dec, qerr
	}

	apply := func(p0, p1 int) uint64 {
		prec := 0
		if p0 >= 0 {
			prec = 1
		}
		raw0, dec0, err0 := quantOne(e0, prec, p0)
		raw1, dec1, err1 := quantOne(e1, prec, p1)
		for ch := 0; ch < nch; ch++ {
			c.ep[s][0][ch] = raw0[ch]
			c.ep[s][1][ch] = raw1[ch]
			e8[s][0][ch] = dec0[ch]
			e8[s][1][ch] = dec1[ch]
		}
		if nch == 3 {
			if m.ab == 0 {
				e8[s][0][3] = 255
				e8[s][1][3] = 255
			}
		}
		if p0 >= 0 {
			c.pbits[s][0] = uint32(p0)
			c.pbits[s][1] = uint32(p1)
		}
		return err0 + err1
	}

	switch {
	case m.epb > 0:
		// Independent p-bit per endpoint: pick each by quantization error.
		best := ^uint64(0)
		bp0, bp1 := 0, 0
		for p0 := 0; p0 < 2; p0++ {
			for p1 := 0; p1 < 2; p1++ {
				if err := apply(p0, p1); err < best {
					best = err
					bp0, bp1 = p0, p1
				}
			}
		}
		apply(bp0, bp1)
	case m.spb > 0:
		best := ^uint64(0)
		bp := 0
		for p := 0; p < 2; p++ {
			if err := apply(p, p); err < best {
				best = err
				bp = p
			}
		}
		apply(bp, bp)
	default:
		apply(-1, -1)
	}
}

// quantizeWithParity quantizes v (0..255) to bits+prec total bits where
// prec is 1 when a p-bit forces the LSB to p. The returned value includes
// the p-bit when present.
func quantizeWithParity(v float32, bits, prec, p int) uint32 {
	total := bits + prec
	top := uint32(1<<uint(total)) - 1
	q := uint32(clampF(v, 0, 255)*float32(top)/255 + 0.5)
	if prec == 0 {
		return q
	}
	// Force the LSB and pick the nearer of the two admissible neighbors.
	q0 := q&^1 | uint32(p)
	cand := []uint32{q0}
	if q0 >= 2 {
		cand = append(cand, q0-2)
	}
	if q0+2 <= top {
		cand = append(cand, q0+2)
	}
	best := cand[0]
	bestD := parityDist(cand[0], total, v)
	for _, qc := range cand[1:] {
		if d := parityDist(qc, total, v); d < bestD {
			best, bestD = qc, d
		}
	}
	return best
}

func parityDist(q uint32, total int, v float32) float32 {
	d := float32(expandUN8(q, total)) - v
	if d < 0 {
		d = -d
	}
	return d
}

func nearestBC7(rot []uint8, t int, ep *[2][4]uint8, weights []uint32, nch int) (uint8, uint64) {
	best := uint64(1) << 62
	bestI := uint8(0)
	for i, w := range weights {
		var e uint64
		for ch := 0; ch < nch; ch++ {
			v := bptcInterp(int32(ep[0][ch]), int32(ep[1][ch]), w)
			d := int64(rot[t*4+ch]) - int64(v)
			e += uint64(d * d)
		}
		if e < best {
			best = e
			bestI = uint8(i)
		}
	}
	return bestI, best
}

// fitBC7Alpha fits the scalar alpha plane of modes 4/5 and returns its
// contribution to the block error.
func fitBC7Alpha(rot *[blockTexels * 4]uint8, m *bc7ModeInfo, alphaBits int, c *bc7Candidate, e8 *[3][2][4]uint8, alphaIdx *[blockTexels]uint8) uint64 {
	lo, hi := rot[3], rot[3]
	for t := 1; t < blockTexels; t++ {
		a := rot[t*4+3]
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}

	top := uint32(1<<uint(m.ab)) - 1
	q0 := (uint32(lo)*top + 127) / 255
	q1 := (uint32(hi)*top + 127) / 255
	c.ep[0][0][3] = q0
	c.ep[0][1][3] = q1
	e8[0][0][3] = expandUN8(q0, m.ab)
	e8[0][1][3] = expandUN8(q1, m.ab)

	w := weightTable(alphaBits)
	var err uint64
	for t := 0; t < blockTexels; t++ {
		best := uint64(1) << 62
		bestI := uint8(0)
		for i, wt := range w {
			v := bptcInterp(int32(e8[0][0][3]), int32(e8[0][1][3]), wt)
			d := int64(rot[t*4+3]) - int64(v)
			if e := uint64(d * d); e < best {
				best = e
				bestI = uint8(i)
			}
		}
		alphaIdx[t] = bestI
		err += best
	}
	return err
}

// fixBC7Anchors enforces the cleared-MSB rule at anchor texels by swapping
// endpoint pairs and inverting indices where needed, then stores the final
// index arrays on the candidate.
func fixBC7Anchors(m *bc7ModeInfo, partition, idxSel int, c *bc7Candidate, colorIdx, alphaIdx *[blockTexels]uint8) {
	// Array 1 has width m.ib and drives color unless the selector swaps it.
	arr1, arr2 := colorIdx, alphaIdx
	if idxSel == 1 {
		arr1, arr2 = alphaIdx, colorIdx
	}

	maxIdx1 := uint8(1<<uint(m.ib)) - 1
	for s := 0; s < m.ns; s++ {
		a := anchorIndex(m.ns, partition, s)
		if arr1[a]>>(uint(m.ib)-1) == 0 {
			continue
		}
		// Invert this subset's indices; swap whichever endpoint plane the
		// primary array drives. Without a secondary array it drives all
		// channels of the subset.
		for t := 0; t < blockTexels; t++ {
			if subsetIndex(m.ns, partition, t) == s {
				arr1[t] = maxIdx1 - arr1[t]
			}
		}
		if m.ib2 == 0 {
			c.ep[s][0], c.ep[s][1] = c.ep[s][1], c.ep[s][0]
			c.pbits[s][0], c.pbits[s][1] = c.pbits[s][1], c.pbits[s][0]
		} else if idxSel == 0 {
			swapBC7Color(c, s)
		} else {
			swapBC7Alpha(c, s)
		}
	}

	if m.ib2 > 0 {
		maxIdx2 := uint8(1<<uint(m.ib2)) - 1
		if arr2[0]>>(uint(m.ib2)-1) != 0 {
			for t := 0; t < blockTexels; t++ {
				arr2[t] = maxIdx2 - arr2[t]
			}
			if idxSel == 0 {
				swapBC7Alpha(c, 0)
			} else {
				swapBC7Color(c, 0)
			}
		}
	}

	c.idx1 = *arr1
	c.idx2 = *arr2
}

func swapBC7Color(c *bc7Candidate, s int) {
	for ch := 0; ch < 3; ch++ {
		c.ep[s][0][ch], c.ep[s][1][ch] = c.ep[s][1][ch], c.ep[s][0][ch]
	}
}

func swapBC7Alpha(c *bc7Candidate, s int) {
	c.ep[s][0][3], c.ep[s][1][3] = c.ep[s][1][3], c.ep[s][0][3]
}

// emitBC7 serializes a candidate in the mode's fixed field order.
func emitBC7(c *bc7Candidate, dst []byte) {
	m := &bc7Modes[c.mode]
	w := newBlockWriter(16)

	w.writeBits(1<<uint(c.mode), c.mode+1)
	w.writeBits(uint32(c.partition), m.pb)
	w.writeBits(uint32(c.rotation), m.rb)
	w.writeBits(uint32(c.idxSel), m.isb)

	for ch := 0; ch < 3; ch++ {
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				w.writeBits(c.ep[s][e][ch], m.cb)
			}
		}
	}
	if m.ab > 0 {
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				w.writeBits(c.ep[s][e][3], m.ab)
			}
		}
	}

	if m.epb > 0 {
		for s := 0; s < m.ns; s++ {
			for e := 0; e < 2; e++ {
				w.writeBit(c.pbits[s][e])
			}
		}
	} else if m.spb > 0 {
		for s := 0; s < m.ns; s++ {
			w.writeBit(c.pbits[s][0])
		}
	}

	writeBC7Indices(&w, m.ns, c.partition, m.ib, &c.idx1)
	if m.ib2 > 0 {
		writeBC7Indices(&w, 1, 0, m.ib2, &c.idx2)
	}
	w.store(dst)
}

func writeBC7Indices(w *blockWriter, ns, partition, width int, idx *[blockTexels]uint8) {
	for t := 0; t < blockTexels; t++ {
		bits := width
		s := subsetIndex(ns, partition, t)
		if t == anchorIndex(ns, partition, s) {
			bits--
		}
		w.writeBits(uint32(idx[t]), bits)
	}
}
