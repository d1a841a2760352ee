package tray

import "encoding/binary"

const iconSize = 16

// getIcon returns a 16x16 32-bit ICO of a keycap outline.
func getIcon() []byte {
	const (
		headerLen = 6 + 16
		dibLen    = 40
		pixelLen  = iconSize * iconSize * 4
		maskLen   = iconSize * 4 // 1bpp rows padded to 32 bits
	)
	icon := make([]byte, headerLen+dibLen+pixelLen+maskLen)
	le := binary.LittleEndian

	// ICONDIR
	le.PutUint16(icon[2:], 1) // type: icon
	le.PutUint16(icon[4:], 1) // count

	// ICONDIRENTRY
	icon[6] = iconSize
	icon[7] = iconSize
	le.PutUint16(icon[10:], 1)  // planes
	le.PutUint16(icon[12:], 32) // bpp
	le.PutUint32(icon[14:], dibLen+pixelLen+maskLen)
	le.PutUint32(icon[18:], headerLen)

	// BITMAPINFOHEADER, height doubled for the AND mask
	dib := icon[headerLen:]
	le.PutUint32(dib[0:], dibLen)
	le.PutUint32(dib[4:], iconSize)
	le.PutUint32(dib[8:], iconSize*2)
	le.PutUint16(dib[12:], 1)
	le.PutUint16(dib[14:], 32)
	le.PutUint32(dib[20:], pixelLen)

	// BGRA rows, bottom-up. Pixels left at zero are transparent.
	px := icon[headerLen+dibLen:]
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			if !keycap(x, y) {
				continue
			}
			o := ((iconSize-1-y)*iconSize + x) * 4
			px[o], px[o+1], px[o+2], px[o+3] = 0xf0, 0xf0, 0xf0, 0xff
		}
	}
	return icon
}

// keycap reports whether (x, y) lies on the outline of a rounded square
// with a short bar for the legend.
func keycap(x, y int) bool {
	const lo, hi = 1, iconSize - 2
	corner := (x == lo || x == hi) && (y == lo || y == hi)
	if corner {
		return false
	}
	if (x == lo || x == hi) && y >= lo && y <= hi {
		return true
	}
	if (y == lo || y == hi) && x >= lo && x <= hi {
		return true
	}
	return y == 10 && x >= 5 && x <= 10
}
