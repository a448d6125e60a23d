package main

// placeholderIcon returns a minimal valid ICO image for the tray.
// internal/tray/tray.go references IconDisconnected/IconConnected/
// IconActive byte slices that were never part of the retrieved pack
// (only the .go source referencing them was retrieved, not whatever
// embedded the actual icon assets), so this simulator uses one small
// procedurally-built icon rather than fabricating the teacher's
// missing binary assets.
func placeholderIcon() []byte {
	// A single 16x16 32bpp BMP wrapped in the minimal ICO container
	// systray (go-systray's Windows/Linux backends) expects.
	const (
		width  = 16
		height = 16
	)

	var img []byte
	// ICONDIR: reserved(2) type(2)=1 count(2)=1
	img = append(img, 0, 0, 1, 0, 1, 0)

	bmpHeaderSize := 40
	pixelDataSize := width * height * 4
	andMaskSize := ((width + 31) / 32) * 4 * height
	imageSize := bmpHeaderSize + pixelDataSize + andMaskSize

	// ICONDIRENTRY: width height colorcount reserved planes(2) bpp(2) size(4) offset(4)
	img = append(img, byte(width), byte(height), 0, 0, 1, 0, 32, 0)
	img = append(img, le32(uint32(imageSize))...)
	img = append(img, le32(uint32(6+16))...)

	// BITMAPINFOHEADER
	img = append(img, le32(uint32(bmpHeaderSize))...)
	img = append(img, le32(uint32(width))...)
	img = append(img, le32(uint32(height*2))...) // height*2 per ICO convention (XOR+AND masks)
	img = append(img, 1, 0) // planes
	img = append(img, 32, 0) // bpp
	img = append(img, le32(0)...) // compression
	img = append(img, le32(uint32(pixelDataSize))...)
	img = append(img, le32(0)...) // x ppm
	img = append(img, le32(0)...) // y ppm
	img = append(img, le32(0)...) // colors used
	img = append(img, le32(0)...) // important colors

	// BGRA pixel data: a flat indigo square, bottom-up per BMP convention.
	for i := 0; i < width*height; i++ {
		img = append(img, 0x90, 0x40, 0x40, 0xff)
	}
	// AND mask: all opaque.
	img = append(img, make([]byte, andMaskSize)...)

	return img
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
