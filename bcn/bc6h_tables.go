package bcn

// BC6H mode layouts. The 14 modes scatter their endpoint bits across the
// 128-bit block in mode-specific orders, so each mode carries an explicit
// run list: consecutive block bits mapping onto a contiguous bit range of
// one logical field. Encoder and decoder both walk the same runs.

// Logical fields of a BC6H block. W/X are the two endpoints of subset 0,
// Y/Z the two endpoints of subset 1, D the partition selector.
const (
	bc6hFieldD = iota
	bc6hFieldRW
	bc6hFieldGW
	bc6hFieldBW
	bc6hFieldRX
	bc6hFieldGX
	bc6hFieldBX
	bc6hFieldRY
	bc6hFieldGY
	bc6hFieldBY
	bc6hFieldRZ
	bc6hFieldGZ
	bc6hFieldBZ
	bc6hFieldCount
)

// bc6hFieldRef maps a run of block bits onto field bits [start, start+count).
type bc6hFieldRef struct {
	field uint8
	start uint8
	count uint8
}

type bc6hModeInfo struct {
	ns          int    // subsets (1 or 2)
	headerBits  int    // 2 or 5
	headerValue uint32 // LSB-first mode indicator
	transformed bool   // X/Y/Z are deltas against W
	wBits       int    // base endpoint precision
	dBits       [3]int // delta precision per channel
	layout      []bc6hFieldRef
}

func ref(field, start, count uint8) bc6hFieldRef { return bc6hFieldRef{field, start, count} }

var bc6hModes = [14]bc6hModeInfo{
	{ // mode 1
		ns: 2, headerBits: 2, headerValue: 0, transformed: true,
		wBits: 10, dBits: [3]int{5, 5, 5},
		layout: []bc6hFieldRef{
			ref(bc6hFieldGY, 4, 1), ref(bc6hFieldBY, 4, 1), ref(bc6hFieldBZ, 4, 1),
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 5), ref(bc6hFieldGZ, 4, 1), ref(bc6hFieldGY, 0, 4),
			ref(bc6hFieldGX, 0, 5), ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldGZ, 0, 4),
			ref(bc6hFieldBX, 0, 5), ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 0, 4),
			ref(bc6hFieldRY, 0, 5), ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldRZ, 0, 5),
			ref(bc6hFieldBZ, 3, 1), ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 2
		ns: 2, headerBits: 2, headerValue: 1, transformed: true,
		wBits: 7, dBits: [3]int{6, 6, 6},
		layout: []bc6hFieldRef{
			ref(bc6hFieldGY, 5, 1), ref(bc6hFieldGZ, 4, 1), ref(bc6hFieldGZ, 5, 1),
			ref(bc6hFieldRW, 0, 7), ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldBZ, 1, 1),
			ref(bc6hFieldBY, 4, 1), ref(bc6hFieldGW, 0, 7), ref(bc6hFieldBY, 5, 1),
			ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldGY, 4, 1), ref(bc6hFieldBW, 0, 7),
			ref(bc6hFieldBZ, 3, 1), ref(bc6hFieldBZ, 5, 1), ref(bc6hFieldBZ, 4, 1),
			ref(bc6hFieldRX, 0, 6), ref(bc6hFieldGY, 0, 4), ref(bc6hFieldGX, 0, 6),
			ref(bc6hFieldGZ, 0, 4), ref(bc6hFieldBX, 0, 6), ref(bc6hFieldBY, 0, 4),
			ref(bc6hFieldRY, 0, 6), ref(bc6hFieldRZ, 0, 6), ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 3
		ns: 2, headerBits: 5, headerValue: 2, transformed: true,
		wBits: 11, dBits: [3]int{5, 4, 4},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 5), ref(bc6hFieldRW, 10, 1), ref(bc6hFieldGY, 0, 4),
			ref(bc6hFieldGX, 0, 4), ref(bc6hFieldGW, 10, 1), ref(bc6hFieldBZ, 0, 1),
			ref(bc6hFieldGZ, 0, 4), ref(bc6hFieldBX, 0, 4), ref(bc6hFieldBW, 10, 1),
			ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 0, 4), ref(bc6hFieldRY, 0, 5),
			ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldRZ, 0, 5), ref(bc6hFieldBZ, 3, 1),
			ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 4
		ns: 2, headerBits: 5, headerValue: 6, transformed: true,
		wBits: 11, dBits: [3]int{4, 5, 4},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 4), ref(bc6hFieldRW, 10, 1), ref(bc6hFieldGZ, 4, 1),
			ref(bc6hFieldGY, 0, 4), ref(bc6hFieldGX, 0, 5), ref(bc6hFieldGW, 10, 1),
			ref(bc6hFieldGZ, 0, 4), ref(bc6hFieldBX, 0, 4), ref(bc6hFieldBW, 10, 1),
			ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 0, 4), ref(bc6hFieldRY, 0, 4),
			ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldRZ, 0, 4),
			ref(bc6hFieldGY, 4, 1), ref(bc6hFieldBZ, 3, 1), ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 5
		ns: 2, headerBits: 5, headerValue: 10, transformed: true,
		wBits: 11, dBits: [3]int{4, 4, 5},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 4), ref(bc6hFieldRW, 10, 1), ref(bc6hFieldBY, 4, 1),
			ref(bc6hFieldGY, 0, 4), ref(bc6hFieldGX, 0, 4), ref(bc6hFieldGW, 10, 1),
			ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldGZ, 0, 4), ref(bc6hFieldBX, 0, 5),
			ref(bc6hFieldBW, 10, 1), ref(bc6hFieldBY, 0, 4), ref(bc6hFieldRY, 0, 4),
			ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldRZ, 0, 4),
			ref(bc6hFieldBZ, 4, 1), ref(bc6hFieldBZ, 3, 1), ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 6
		ns: 2, headerBits: 5, headerValue: 14, transformed: true,
		wBits: 9, dBits: [3]int{5, 5, 5},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 9), ref(bc6hFieldBY, 4, 1), ref(bc6hFieldGW, 0, 9),
			ref(bc6hFieldGY, 4, 1), ref(bc6hFieldBW, 0, 9), ref(bc6hFieldBZ, 4, 1),
			ref(bc6hFieldRX, 0, 5), ref(bc6hFieldGZ, 4, 1), ref(bc6hFieldGY, 0, 4),
			ref(bc6hFieldGX, 0, 5), ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldGZ, 0, 4),
			ref(bc6hFieldBX, 0, 5), ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 0, 4),
			ref(bc6hFieldRY, 0, 5), ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldRZ, 0, 5),
			ref(bc6hFieldBZ, 3, 1), ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 7
		ns: 2, headerBits: 5, headerValue: 18, transformed: true,
		wBits: 8, dBits: [3]int{6, 5, 5},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 8), ref(bc6hFieldGZ, 4, 1), ref(bc6hFieldBY, 4, 1),
			ref(bc6hFieldGW, 0, 8), ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldGY, 4, 1),
			ref(bc6hFieldBW, 0, 8), ref(bc6hFieldBZ, 3, 1), ref(bc6hFieldBZ, 4, 1),
			ref(bc6hFieldRX, 0, 6), ref(bc6hFieldGY, 0, 4), ref(bc6hFieldGX, 0, 5),
			ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldGZ, 0, 4), ref(bc6hFieldBX, 0, 5),
			ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 0, 4), ref(bc6hFieldRY, 0, 6),
			ref(bc6hFieldRZ, 0, 6), ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 8
		ns: 2, headerBits: 5, headerValue: 22, transformed: true,
		wBits: 8, dBits: [3]int{5, 6, 5},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 8), ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldBY, 4, 1),
			ref(bc6hFieldGW, 0, 8), ref(bc6hFieldGY, 5, 1), ref(bc6hFieldGY, 4, 1),
			ref(bc6hFieldBW, 0, 8), ref(bc6hFieldGZ, 5, 1), ref(bc6hFieldBZ, 4, 1),
			ref(bc6hFieldRX, 0, 5), ref(bc6hFieldGZ, 4, 1), ref(bc6hFieldGY, 0, 4),
			ref(bc6hFieldGX, 0, 6), ref(bc6hFieldGZ, 0, 4), ref(bc6hFieldBX, 0, 5),
			ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 0, 4), ref(bc6hFieldRY, 0, 5),
			ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldRZ, 0, 5), ref(bc6hFieldBZ, 3, 1),
			ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 9
		ns: 2, headerBits: 5, headerValue: 26, transformed: true,
		wBits: 8, dBits: [3]int{5, 5, 6},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 8), ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 4, 1),
			ref(bc6hFieldGW, 0, 8), ref(bc6hFieldBY, 5, 1), ref(bc6hFieldGY, 4, 1),
			ref(bc6hFieldBW, 0, 8), ref(bc6hFieldBZ, 5, 1), ref(bc6hFieldBZ, 4, 1),
			ref(bc6hFieldRX, 0, 5), ref(bc6hFieldGZ, 4, 1), ref(bc6hFieldGY, 0, 4),
			ref(bc6hFieldGX, 0, 5), ref(bc6hFieldBZ, 0, 1), ref(bc6hFieldGZ, 0, 4),
			ref(bc6hFieldBX, 0, 6), ref(bc6hFieldBY, 0, 4), ref(bc6hFieldRY, 0, 5),
			ref(bc6hFieldBZ, 2, 1), ref(bc6hFieldRZ, 0, 5), ref(bc6hFieldBZ, 3, 1),
			ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 10
		ns: 2, headerBits: 5, headerValue: 30, transformed: false,
		wBits: 6, dBits: [3]int{6, 6, 6},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 6), ref(bc6hFieldGZ, 4, 1), ref(bc6hFieldBZ, 0, 1),
			ref(bc6hFieldBZ, 1, 1), ref(bc6hFieldBY, 4, 1), ref(bc6hFieldGW, 0, 6),
			ref(bc6hFieldGY, 5, 1), ref(bc6hFieldBY, 5, 1), ref(bc6hFieldBZ, 2, 1),
			ref(bc6hFieldGY, 4, 1), ref(bc6hFieldBW, 0, 6), ref(bc6hFieldGZ, 5, 1),
			ref(bc6hFieldBZ, 3, 1), ref(bc6hFieldBZ, 5, 1), ref(bc6hFieldBZ, 4, 1),
			ref(bc6hFieldRX, 0, 6), ref(bc6hFieldGY, 0, 4), ref(bc6hFieldGX, 0, 6),
			ref(bc6hFieldGZ, 0, 4), ref(bc6hFieldBX, 0, 6), ref(bc6hFieldBY, 0, 4),
			ref(bc6hFieldRY, 0, 6), ref(bc6hFieldRZ, 0, 6), ref(bc6hFieldD, 0, 5),
		},
	},
	{ // mode 11
		ns: 1, headerBits: 5, headerValue: 3, transformed: false,
		wBits: 10, dBits: [3]int{10, 10, 10},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 10), ref(bc6hFieldGX, 0, 10), ref(bc6hFieldBX, 0, 10),
		},
	},
	{ // mode 12
		ns: 1, headerBits: 5, headerValue: 7, transformed: true,
		wBits: 11, dBits: [3]int{9, 9, 9},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 9), ref(bc6hFieldRW, 10, 1), ref(bc6hFieldGX, 0, 9),
			ref(bc6hFieldGW, 10, 1), ref(bc6hFieldBX, 0, 9), ref(bc6hFieldBW, 10, 1),
		},
	},
	{ // mode 13
		ns: 1, headerBits: 5, headerValue: 11, transformed: true,
		wBits: 12, dBits: [3]int{8, 8, 8},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 8), ref(bc6hFieldRW, 10, 1), ref(bc6hFieldRW, 11, 1),
			ref(bc6hFieldGX, 0, 8), ref(bc6hFieldGW, 10, 1), ref(bc6hFieldGW, 11, 1),
			ref(bc6hFieldBX, 0, 8), ref(bc6hFieldBW, 10, 1), ref(bc6hFieldBW, 11, 1),
		},
	},
	{ // mode 14
		ns: 1, headerBits: 5, headerValue: 15, transformed: true,
		wBits: 16, dBits: [3]int{4, 4, 4},
		layout: []bc6hFieldRef{
			ref(bc6hFieldRW, 0, 10), ref(bc6hFieldGW, 0, 10), ref(bc6hFieldBW, 0, 10),
			ref(bc6hFieldRX, 0, 4),
			ref(bc6hFieldRW, 15, 1), ref(bc6hFieldRW, 14, 1), ref(bc6hFieldRW, 13, 1),
			ref(bc6hFieldRW, 12, 1), ref(bc6hFieldRW, 11, 1), ref(bc6hFieldRW, 10, 1),
			ref(bc6hFieldGX, 0, 4),
			ref(bc6hFieldGW, 15, 1), ref(bc6hFieldGW, 14, 1), ref(bc6hFieldGW, 13, 1),
			ref(bc6hFieldGW, 12, 1), ref(bc6hFieldGW, 11, 1), ref(bc6hFieldGW, 10, 1),
			ref(bc6hFieldBX, 0, 4),
			ref(bc6hFieldBW, 15, 1), ref(bc6hFieldBW, 14, 1), ref(bc6hFieldBW, 13, 1),
			ref(bc6hFieldBW, 12, 1), ref(bc6hFieldBW, 11, 1), ref(bc6hFieldBW, 10, 1),
		},
	},
}

// bc6hModeIndex resolves the mode header read from the block start: 2 bits,
// then 3 more when the first two read 2 or 3. Returns -1 for the four
// reserved patterns, which decode to an all-zero block.
func bc6hModeIndex(header uint32) int {
	for i := range bc6hModes {
		if bc6hModes[i].headerValue == header {
			return i
		}
	}
	return -1
}

// fieldBits returns the total stored width of a field in this mode, used
// for sign extension.
func (m *bc6hModeInfo) fieldBits(field int) int {
	switch field {
	case bc6hFieldD:
		return 5
	case bc6hFieldRW, bc6hFieldGW, bc6hFieldBW:
		return m.wBits
	case bc6hFieldRX, bc6hFieldRY, bc6hFieldRZ:
		return m.dBits[0]
	case bc6hFieldGX, bc6hFieldGY, bc6hFieldGZ:
		return m.dBits[1]
	default:
		return m.dBits[2]
	}
}
