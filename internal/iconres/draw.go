package iconres

import "sync"

const size = 32

var (
	defaultOnce sync.Once
	defaultICO  []byte
	appOnce     sync.Once
	appICO      []byte
)

// DefaultIcon returns the generic executable icon.
func DefaultIcon() []byte {
	defaultOnce.Do(func() {
		c := newCanvas()
		c.window()
		defaultICO = c.ico()
	})
	return defaultICO
}

// AppIcon returns the tray and window icon: the generic executable icon with
// a red prohibition sign over it.
func AppIcon() []byte {
	appOnce.Do(func() {
		c := newCanvas()
		c.window()
		c.ring(22, 22, 8.5, 2.2, 210, 40, 40)
		c.line(16.5, 27.5, 27.5, 16.5, 1.6, 210, 40, 40)
		appICO = c.ico()
	})
	return appICO
}

// canvas holds bottom-up BGRA pixels.
type canvas struct {
	pixels []byte
}

func newCanvas() *canvas {
	return &canvas{pixels: make([]byte, size*size*4)}
}

func (c *canvas) set(x, y int, r, g, b, a byte) {
	if x < 0 || x >= size || y < 0 || y >= size {
		return
	}
	off := ((size-1-y)*size + x) * 4
	ea := float64(c.pixels[off+3]) / 255.0
	na := float64(a) / 255.0
	oa := na + ea*(1-na)
	if oa > 0 {
		c.pixels[off+0] = byte((float64(b)*na + float64(c.pixels[off+0])*ea*(1-na)) / oa)
		c.pixels[off+1] = byte((float64(g)*na + float64(c.pixels[off+1])*ea*(1-na)) / oa)
		c.pixels[off+2] = byte((float64(r)*na + float64(c.pixels[off+2])*ea*(1-na)) / oa)
		c.pixels[off+3] = byte(oa * 255)
	}
}

func (c *canvas) rect(x0, y0, x1, y1 int, r, g, b byte) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.set(x, y, r, g, b, 255)
		}
	}
}

// window draws an application window: frame, title bar and body.
func (c *canvas) window() {
	c.rect(2, 4, 29, 27, 90, 90, 90)
	c.rect(3, 5, 28, 9, 50, 110, 200)
	c.rect(3, 10, 28, 26, 245, 245, 245)
	c.rect(25, 6, 27, 8, 235, 235, 235)
	for y := 13; y <= 23; y += 3 {
		c.rect(6, y, 20, y, 170, 170, 170)
	}
}

func (c *canvas) ring(cx, cy, radius, width float64, r, g, b byte) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			d := sqrt(dx*dx + dy*dy)
			if d <= radius+width/2 && d >= radius-width/2 {
				c.set(x, y, r, g, b, 255)
			} else if d < radius-width/2 {
				c.set(x, y, 255, 255, 255, 200)
			}
		}
	}
}

func (c *canvas) line(x0, y0, x1, y1, width float64, r, g, b byte) {
	const steps = 64
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		px := x0 + (x1-x0)*t
		py := y0 + (y1-y0)*t
		for y := int(py - width); y <= int(py+width); y++ {
			for x := int(px - width); x <= int(px+width); x++ {
				dx := float64(x) + 0.5 - px
				dy := float64(y) + 0.5 - py
				if dx*dx+dy*dy <= width*width {
					c.set(x, y, r, g, b, 255)
				}
			}
		}
	}
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	r := v
	for i := 0; i < 20; i++ {
		r = (r + v/r) / 2
	}
	return r
}

// ico wraps the pixels in a single-image 32bpp ICO file.
func (c *canvas) ico() []byte {
	const dibHeaderSize = 40
	pixelDataSize := size * size * 4
	maskRowSize := ((size + 31) / 32) * 4
	maskSize := maskRowSize * size
	imageDataSize := dibHeaderSize + pixelDataSize + maskSize
	headerSize := 6 + 16

	buf := make([]byte, 0, headerSize+imageDataSize)

	// ICONDIR
	buf = append(buf, 0, 0)
	buf = append(buf, 1, 0)
	buf = append(buf, 1, 0)

	// ICONDIRENTRY
	buf = append(buf, byte(size), byte(size), 0, 0)
	buf = append(buf, 1, 0)
	buf = append(buf, 32, 0)
	buf = appendUint32(buf, uint32(imageDataSize))
	buf = appendUint32(buf, uint32(headerSize))

	// BITMAPINFOHEADER, height doubled for the AND mask
	buf = appendUint32(buf, dibHeaderSize)
	buf = appendUint32(buf, size)
	buf = appendUint32(buf, size*2)
	buf = append(buf, 1, 0)
	buf = append(buf, 32, 0)
	buf = appendUint32(buf, 0)
	buf = appendUint32(buf, uint32(pixelDataSize))
	buf = appendUint32(buf, 0)
	buf = appendUint32(buf, 0)
	buf = appendUint32(buf, 0)
	buf = appendUint32(buf, 0)

	buf = append(buf, c.pixels...)
	buf = append(buf, make([]byte, maskSize)...)
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
