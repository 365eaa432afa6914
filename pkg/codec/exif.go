package codec

import (
	"encoding/binary"
	"errors"
)

var errNoOrientation = errors.New("no exif orientation")

const tagOrientation = 0x0112

// jpegTIFFStart scans the JPEG segments for an APP1 "Exif\0\0" block and
// returns the offset of its TIFF header.
func jpegTIFFStart(data []byte) (int, bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, false
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA { // start of scan
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if marker == 0xE1 && segLen >= 8 && i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10, true
		}
		if segLen < 2 {
			i += 2
		} else {
			i += 2 + segLen
		}
	}
	return 0, false
}

// orientation returns the EXIF orientation (1..8) stored in IFD0 of a JPEG.
func orientation(data []byte) (int, error) {
	start, ok := jpegTIFFStart(data)
	if !ok || start+8 > len(data) {
		return 0, errNoOrientation
	}
	tiff := data[start:]
	var bo binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return 0, errNoOrientation
	}
	if bo.Uint16(tiff[2:4]) != 0x2A {
		return 0, errNoOrientation
	}
	ifd := int(bo.Uint32(tiff[4:8]))
	if ifd+2 > len(tiff) {
		return 0, errNoOrientation
	}
	n := int(bo.Uint16(tiff[ifd:]))
	for e := 0; e < n; e++ {
		off := ifd + 2 + e*12
		if off+12 > len(tiff) {
			break
		}
		if bo.Uint16(tiff[off:]) != tagOrientation {
			continue
		}
		// SHORT, count 1: value sits in the first two bytes of the value field
		if bo.Uint16(tiff[off+2:]) != 3 {
			return 0, errNoOrientation
		}
		v := int(bo.Uint16(tiff[off+8:]))
		if v < 1 || v > 8 {
			return 0, errNoOrientation
		}
		return v, nil
	}
	return 0, errNoOrientation
}
