// Package zip64 repairs ZIP containers whose 32-bit size and offset fields
// were left as ZIP64 sentinels (0xFFFFFFFF) by the producing tool. Some
// slicers emit archives this way even for small files, which breaks readers
// that do not speak ZIP64. Patch rewrites those fields in place from the
// 64-bit values carried in the ZIP64 extra fields, so a plain ZIP reader can
// consume the result.
package zip64

const (
	sigLocalFile = 0x04034b50
	sigCentral   = 0x02014b50
	sigEOCD      = 0x06054b50
	sigEOCD64    = 0x06064b50

	localHeaderLen   = 30
	centralHeaderLen = 46
	eocdLen          = 22
	eocd64Len        = 56

	zip64ExtraTag = 0x0001

	sentinel = 0xFFFFFFFF
	clampMax = 0xFFFFFFFE
)

// Patch returns a copy of data with sentinel size/offset fields rewritten
// from their ZIP64 extra-field values. Values above 32 bits are clamped to
// 0xFFFFFFFE. Patch never fails: whenever a signature is missing where one
// was expected, the remaining structure is left untouched and the caller's
// ZIP reader decides whether the archive is usable.
func Patch(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	b := buffer{data: out}
	patchLocalHeaders(b)
	if cdOffset, ok := patchEndRecord(b); ok {
		patchCentralDirectory(b, int(cdOffset))
	}
	return out
}

// patchLocalHeaders walks local file headers from offset 0 until the
// signature stops matching (the start of the central directory).
func patchLocalHeaders(b buffer) {
	pos := 0
	for {
		sig, ok := b.u32(pos)
		if !ok || sig != sigLocalFile {
			return
		}

		comp, ok1 := b.u32(pos + 18)
		uncomp, ok2 := b.u32(pos + 22)
		nameLen, ok3 := b.u16(pos + 26)
		extraLen, ok4 := b.u16(pos + 28)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return
		}

		if comp == sentinel || uncomp == sentinel {
			extraOff := pos + localHeaderLen + int(nameLen)
			patchFromExtra(b, extraOff, int(extraLen), sizeFields{
				uncompOff: pos + 22,
				uncomp:    uncomp,
				compOff:   pos + 18,
				comp:      comp,
			})
			// Re-read: the advance below must use the patched value.
			comp, _ = b.u32(pos + 18)
		}

		pos += localHeaderLen + int(nameLen) + int(extraLen) + int(comp)
	}
}

// patchEndRecord locates the EOCD by backward signature search (it follows
// any archive comment), patches its central-directory offset from the ZIP64
// EOCD record if it is a sentinel, and returns the resulting offset.
func patchEndRecord(b buffer) (uint32, bool) {
	eocd := -1
	for pos := len(b.data) - eocdLen; pos >= 0; pos-- {
		if sig, ok := b.u32(pos); ok && sig == sigEOCD {
			eocd = pos
			break
		}
	}
	if eocd < 0 {
		return 0, false
	}

	cdOffset, ok := b.u32(eocd + 16)
	if !ok {
		return 0, false
	}
	if cdOffset != sentinel {
		return cdOffset, true
	}

	// The ZIP64 EOCD record precedes the EOCD; its central-directory offset
	// lives at a fixed position past the signature.
	for pos := eocd - eocd64Len; pos >= 0; pos-- {
		sig, ok := b.u32(pos)
		if !ok || sig != sigEOCD64 {
			continue
		}
		real, ok := b.u64(pos + 48)
		if !ok {
			return 0, false
		}
		patched := clamp(real)
		b.putU32(eocd+16, patched)
		return patched, true
	}
	return 0, false
}

// patchCentralDirectory walks central-directory entries starting at offset,
// patching sentinel size and local-header-offset fields.
func patchCentralDirectory(b buffer, offset int) {
	pos := offset
	for {
		sig, ok := b.u32(pos)
		if !ok || sig != sigCentral {
			return
		}

		comp, ok1 := b.u32(pos + 20)
		uncomp, ok2 := b.u32(pos + 24)
		nameLen, ok3 := b.u16(pos + 28)
		extraLen, ok4 := b.u16(pos + 30)
		commentLen, ok5 := b.u16(pos + 32)
		headerOffset, ok6 := b.u32(pos + 42)
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
			return
		}

		if comp == sentinel || uncomp == sentinel || headerOffset == sentinel {
			extraOff := pos + centralHeaderLen + int(nameLen)
			patchFromExtra(b, extraOff, int(extraLen), sizeFields{
				uncompOff: pos + 24,
				uncomp:    uncomp,
				compOff:   pos + 20,
				comp:      comp,
				offsetOff: pos + 42,
				offset:    headerOffset,
				hasOffset: true,
			})
		}

		pos += centralHeaderLen + int(nameLen) + int(extraLen) + int(commentLen)
	}
}

// sizeFields names the 32-bit fields of one header that may need patching,
// together with their current values.
type sizeFields struct {
	uncompOff int
	uncomp    uint32
	compOff   int
	comp      uint32
	offsetOff int
	offset    uint32
	hasOffset bool
}

// patchFromExtra finds the ZIP64 extra field inside [extraOff, extraOff+
// extraLen) and consumes its 64-bit values in the fixed order uncompressed
// size, compressed size, local-header offset. Only fields whose 32-bit
// counterparts are sentinels are present in the extra data, so the cursor
// advances only for those.
func patchFromExtra(b buffer, extraOff, extraLen int, f sizeFields) {
	dataOff, dataLen, ok := findZip64Extra(b, extraOff, extraLen)
	if !ok {
		return
	}

	cur := dataOff
	end := dataOff + dataLen
	consume := func() (uint64, bool) {
		if cur+8 > end {
			return 0, false
		}
		v, ok := b.u64(cur)
		cur += 8
		return v, ok
	}

	if f.uncomp == sentinel {
		if v, ok := consume(); ok {
			b.putU32(f.uncompOff, clamp(v))
		}
	}
	if f.comp == sentinel {
		if v, ok := consume(); ok {
			b.putU32(f.compOff, clamp(v))
		}
	}
	if f.hasOffset && f.offset == sentinel {
		if v, ok := consume(); ok {
			b.putU32(f.offsetOff, clamp(v))
		}
	}
}

// findZip64Extra iterates tag/length pairs in a header's extra-field region
// and returns the data bounds of the ZIP64 extra field (tag 0x0001).
func findZip64Extra(b buffer, off, length int) (dataOff, dataLen int, ok bool) {
	end := off + length
	if end > len(b.data) {
		end = len(b.data)
	}
	for cur := off; cur+4 <= end; {
		tag, ok1 := b.u16(cur)
		size, ok2 := b.u16(cur + 2)
		if !ok1 || !ok2 {
			return 0, 0, false
		}
		if tag == zip64ExtraTag {
			if cur+4+int(size) > end {
				return 0, 0, false
			}
			return cur + 4, int(size), true
		}
		cur += 4 + int(size)
	}
	return 0, 0, false
}

func clamp(v uint64) uint32 {
	if v > clampMax {
		return clampMax
	}
	return uint32(v)
}
