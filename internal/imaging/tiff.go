package imaging

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/tiff"
)

// maxTIFFPages bounds IFD chain walks against corrupt next-pointers.
const maxTIFFPages = 4096

// DecodeTIFFPages decodes every page of a (possibly multi-page) TIFF.
//
// The stdlib-style tiff decoder only reads the first IFD, so this walks the
// IFD chain and re-points the header's first-IFD offset at each page before
// decoding it.
func DecodeTIFFPages(data []byte) ([]image.Image, error) {
	bo, first, err := tiffHeader(data)
	if err != nil {
		return nil, err
	}

	var pages []image.Image
	seen := map[uint32]struct{}{}
	off := first
	for off != 0 {
		if _, dup := seen[off]; dup || len(pages) >= maxTIFFPages {
			return nil, fmt.Errorf("tiff: cyclic or oversized IFD chain")
		}
		seen[off] = struct{}{}
		if int(off)+2 > len(data) {
			return nil, fmt.Errorf("tiff: IFD offset %d out of range", off)
		}
		n := bo.Uint16(data[off : off+2])
		next := int(off) + 2 + int(n)*12
		if next+4 > len(data) {
			return nil, fmt.Errorf("tiff: truncated IFD at offset %d", off)
		}

		buf := make([]byte, len(data))
		copy(buf, data)
		bo.PutUint32(buf[4:8], off)
		img, err := tiff.Decode(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("tiff: decode page %d: %w", len(pages), err)
		}
		pages = append(pages, img)

		off = bo.Uint32(data[next : next+4])
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("tiff: no pages")
	}
	return pages, nil
}

// TIFFPageCount walks the IFD chain without decoding pixel data.
func TIFFPageCount(data []byte) (int, error) {
	bo, off, err := tiffHeader(data)
	if err != nil {
		return 0, err
	}
	count := 0
	seen := map[uint32]struct{}{}
	for off != 0 {
		if _, dup := seen[off]; dup || count >= maxTIFFPages {
			return 0, fmt.Errorf("tiff: cyclic or oversized IFD chain")
		}
		seen[off] = struct{}{}
		if int(off)+2 > len(data) {
			return 0, fmt.Errorf("tiff: IFD offset %d out of range", off)
		}
		n := bo.Uint16(data[off : off+2])
		next := int(off) + 2 + int(n)*12
		if next+4 > len(data) {
			return 0, fmt.Errorf("tiff: truncated IFD at offset %d", off)
		}
		count++
		off = bo.Uint32(data[next : next+4])
	}
	return count, nil
}

func tiffHeader(data []byte) (binary.ByteOrder, uint32, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("tiff: file too short")
	}
	var bo binary.ByteOrder
	switch string(data[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, 0, fmt.Errorf("tiff: bad byte-order mark %q", data[0:2])
	}
	if bo.Uint16(data[2:4]) != 42 {
		return nil, 0, fmt.Errorf("tiff: bad magic")
	}
	return bo, bo.Uint32(data[4:8]), nil
}

// TIFF entry types used by the writer.
const (
	typeShort = 3
	typeLong  = 4
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	value uint32
}

// EncodeTIFFPages writes pages as a little-endian baseline multi-page TIFF:
// 8-bit grayscale, uncompressed, one strip per page. Every page is linked
// through the IFD next-pointer chain so standard readers see all of them.
func EncodeTIFFPages(w io.Writer, pages []*image.Gray) error {
	if len(pages) == 0 {
		return fmt.Errorf("tiff: no pages to encode")
	}

	const nEntries = 10
	ifdSize := 2 + nEntries*12 + 4

	// Lay out: header, then per page [pixel data (even-padded), IFD].
	dataOff := make([]uint32, len(pages))
	ifdOff := make([]uint32, len(pages))
	pos := uint32(8)
	for i, p := range pages {
		sz := uint32(p.Bounds().Dx() * p.Bounds().Dy())
		dataOff[i] = pos
		padded := sz + sz%2
		ifdOff[i] = pos + padded
		pos = ifdOff[i] + uint32(ifdSize)
	}

	var buf bytes.Buffer
	buf.Grow(int(pos))
	buf.WriteString("II")
	le := binary.LittleEndian
	writeU16 := func(v uint16) {
		var b [2]byte
		le.PutUint16(b[:], v)
		buf.Write(b[:])
	}
	writeU32 := func(v uint32) {
		var b [4]byte
		le.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	writeU16(42)
	writeU32(ifdOff[0])

	for i, p := range pages {
		b := p.Bounds()
		width := uint32(b.Dx())
		height := uint32(b.Dy())
		sz := width * height

		for y := 0; y < int(height); y++ {
			off := p.PixOffset(b.Min.X, b.Min.Y+y)
			buf.Write(p.Pix[off : off+int(width)])
		}
		if sz%2 == 1 {
			buf.WriteByte(0)
		}

		entries := []ifdEntry{
			{254, typeLong, 2}, // NewSubfileType: page of a multi-page file
			{256, typeLong, width},
			{257, typeLong, height},
			{258, typeShort, 8},  // BitsPerSample
			{259, typeShort, 1},  // Compression: none
			{262, typeShort, 1},  // Photometric: BlackIsZero
			{273, typeLong, dataOff[i]},
			{277, typeShort, 1}, // SamplesPerPixel
			{278, typeLong, height},
			{279, typeLong, sz},
		}
		writeU16(uint16(len(entries)))
		for _, e := range entries {
			writeU16(e.tag)
			writeU16(e.typ)
			writeU32(1)
			if e.typ == typeShort {
				writeU16(uint16(e.value))
				writeU16(0)
			} else {
				writeU32(e.value)
			}
		}
		if i+1 < len(pages) {
			writeU32(ifdOff[i+1])
		} else {
			writeU32(0)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}
