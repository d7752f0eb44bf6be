package zip64

import "encoding/binary"

// buffer wraps the working copy of the archive with bounds-checked
// little-endian reads and writes at computed offsets.
type buffer struct {
	data []byte
}

func (b buffer) u16(off int) (uint16, bool) {
	if off < 0 || off+2 > len(b.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b.data[off:]), true
}

func (b buffer) u32(off int) (uint32, bool) {
	if off < 0 || off+4 > len(b.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b.data[off:]), true
}

func (b buffer) u64(off int) (uint64, bool) {
	if off < 0 || off+8 > len(b.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b.data[off:]), true
}

func (b buffer) putU32(off int, v uint32) bool {
	if off < 0 || off+4 > len(b.data) {
		return false
	}
	binary.LittleEndian.PutUint32(b.data[off:], v)
	return true
}
