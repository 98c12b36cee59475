package bcn

// bc7ModeInfo fixes the field layout of one BC7 mode. Fields are serialized
// in a single order for every mode (mode bits, partition, rotation, index
// selector, R/G/B/A endpoints, p-bits, index arrays), so one table entry
// fully describes the bitstream.
type bc7ModeInfo struct {
	ns  int // subsets per block
	pb  int // partition selector bits
	rb  int // rotation bits
	isb int // index selector bits
	cb  int // color bits per channel per endpoint
	ab  int // alpha bits per endpoint (0: opaque)
	epb int // 1 if each endpoint carries its own p-bit
	spb int // 1 if each subset shares one p-bit
	ib  int // primary index width
	ib2 int // secondary index width (modes 4/5)
}

var bc7Modes = [8]bc7ModeInfo{
	{ns: 3, pb: 4, cb: 4, epb: 1, ib: 3},                // mode 0
	{ns: 2, pb: 6, cb: 6, spb: 1, ib: 3},                // mode 1
	{ns: 3, pb: 6, cb: 5, ib: 2},                        // mode 2
	{ns: 2, pb: 6, cb: 7, epb: 1, ib: 2},                // mode 3
	{ns: 1, rb: 2, isb: 1, cb: 5, ab: 6, ib: 2, ib2: 3}, // mode 4
	{ns: 1, rb: 2, cb: 7, ab: 8, ib: 2, ib2: 2},         // mode 5
	{ns: 1, cb: 7, ab: 7, epb: 1, ib: 4},                // mode 6
	{ns: 2, pb: 6, cb: 5, ab: 5, epb: 1, ib: 2},         // mode 7
}

// bc7BlockMode returns the mode of a block from its leading byte, or -1
// for the reserved pattern (no mode bit set), which decodes to zeros.
func bc7BlockMode(b0 byte) int {
	for m := 0; m < 8; m++ {
		if b0&(1<<uint(m)) != 0 {
			return m
		}
	}
	return -1
}
