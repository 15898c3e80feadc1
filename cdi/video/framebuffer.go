package video

// Color is a framebuffer pixel, 0xAARRGGBB.
type Color uint32

const (
	BlackColor  Color = 0xFF000000
	WhiteColor  Color = 0xFFFFFFFF
	alphaOpaque       = 0xFF000000
)

// RGB converts a 24-bit CLUT or register color to an opaque framebuffer color.
func RGB(v uint32) Color {
	return Color(alphaOpaque | v&0x00FFFFFF)
}

// FrameBuffer holds the visible part of the raster, one uint32 per pixel.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the specified size.
func NewFrameBuffer(width, height uint) *FrameBuffer {
	return &FrameBuffer{
		width:  width,
		height: height,
		buffer: make([]uint32, width*height),
	}
}

func (fb *FrameBuffer) Width() uint  { return fb.width }
func (fb *FrameBuffer) Height() uint { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color Color) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Line returns row y of the buffer. Writes through the slice update the frame.
func (fb *FrameBuffer) Line(y uint) []uint32 {
	start := y * fb.width
	return fb.buffer[start : start+fb.width]
}

// Fill sets every pixel to color.
func (fb *FrameBuffer) Fill(color Color) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}
