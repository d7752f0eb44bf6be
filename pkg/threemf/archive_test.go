package threemf

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type containerFile struct {
	name    string
	content string
}

// buildContainer writes a stored ZIP in memory; entry order is the order
// given, which is also the enumeration order readers see.
func buildContainer(t *testing.T, files []containerFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// storedArchive hand-builds a single-entry stored ZIP. With zip64 set, the
// 32-bit size/offset fields are sentinels backed by ZIP64 extra fields, the
// shape the patcher exists to repair.
func storedArchive(name string, content []byte, zip64 bool) []byte {
	var buf bytes.Buffer
	u16 := func(v uint16) { binary.Write(&buf, binary.LittleEndian, v) }
	u32 := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }
	u64 := func(v uint64) { binary.Write(&buf, binary.LittleEndian, v) }

	const sentinel = 0xFFFFFFFF
	size := uint32(len(content))
	crc := crc32.ChecksumIEEE(content)

	// Local file header at offset 0.
	u32(0x04034b50)
	u16(20)
	u16(0)
	u16(0)
	u16(0)
	u16(0)
	u32(crc)
	if zip64 {
		u32(sentinel)
		u32(sentinel)
		u16(uint16(len(name)))
		u16(20)
		buf.WriteString(name)
		u16(0x0001)
		u16(16)
		u64(uint64(size))
		u64(uint64(size))
	} else {
		u32(size)
		u32(size)
		u16(uint16(len(name)))
		u16(0)
		buf.WriteString(name)
	}
	buf.Write(content)

	// Central directory.
	cdStart := buf.Len()
	u32(0x02014b50)
	u16(20)
	u16(20)
	u16(0)
	u16(0)
	u16(0)
	u16(0)
	u32(crc)
	if zip64 {
		u32(sentinel)
		u32(sentinel)
		u16(uint16(len(name)))
		u16(28)
		u16(0)
		u16(0)
		u16(0)
		u32(0)
		u32(sentinel)
		buf.WriteString(name)
		u16(0x0001)
		u16(24)
		u64(uint64(size))
		u64(uint64(size))
		u64(0) // local header offset
	} else {
		u32(size)
		u32(size)
		u16(uint16(len(name)))
		u16(0)
		u16(0)
		u16(0)
		u16(0)
		u32(0)
		u32(0)
		buf.WriteString(name)
	}
	cdSize := buf.Len() - cdStart

	if zip64 {
		recordStart := buf.Len()
		u32(0x06064b50)
		u64(44)
		u16(45)
		u16(45)
		u32(0)
		u32(0)
		u64(1)
		u64(1)
		u64(uint64(cdSize))
		u64(uint64(cdStart))
		u32(0x07064b50)
		u32(0)
		u64(uint64(recordStart))
		u32(1)
	}

	// EOCD.
	u32(0x06054b50)
	u16(0)
	u16(0)
	u16(1)
	u16(1)
	u32(uint32(cdSize))
	if zip64 {
		u32(sentinel)
	} else {
		u32(uint32(cdStart))
	}
	u16(0)

	return buf.Bytes()
}

func TestOpenArchiveEntries(t *testing.T) {
	data := buildContainer(t, []containerFile{
		{"[Content_Types].xml", "<Types/>"},
		{"3D/3dmodel.model", "<model/>"},
		{"Metadata/thumbnail.png", "not really a png"},
	})

	archive, err := OpenArchive(data)
	require.NoError(t, err)

	entries := archive.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "[Content_Types].xml", entries[0].Name)
	assert.Equal(t, uint64(len("<Types/>")), entries[0].UncompressedSize)

	models := archive.ModelEntries()
	require.Len(t, models, 1)
	assert.Equal(t, "3D/3dmodel.model", models[0].Name)

	content, err := archive.Extract(models[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("<model/>"), content)
}

func TestOpenArchiveRejectsGarbage(t *testing.T) {
	_, err := OpenArchive([]byte("definitely not a zip"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCannotOpenArchive)
}

func TestExtractForeignEntry(t *testing.T) {
	data := buildContainer(t, []containerFile{{"3D/3dmodel.model", "<model/>"}})
	archive, err := OpenArchive(data)
	require.NoError(t, err)

	_, err = archive.Extract(Entry{Name: "3D/3dmodel.model"})
	assert.Error(t, err)
}

func TestZip64RoundTrip(t *testing.T) {
	content := []byte(`<model><resources></resources></model>`)

	plain := storedArchive("3D/3dmodel.model", content, false)
	flagged := storedArchive("3D/3dmodel.model", content, true)

	want := extractOnly(t, plain)
	got := extractOnly(t, flagged)

	// Patched ZIP64 extraction must match the plain archive byte for byte.
	assert.Equal(t, want, got)
	assert.Equal(t, content, got)
}

func extractOnly(t *testing.T, data []byte) []byte {
	t.Helper()
	archive, err := OpenArchive(data)
	require.NoError(t, err)
	entries := archive.Entries()
	require.Len(t, entries, 1)
	content, err := archive.Extract(entries[0])
	require.NoError(t, err)
	return content
}
