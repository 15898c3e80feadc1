package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"github.com/valerio/go-cdi/cdi/video"
)

// FrameImage converts a framebuffer of 0xAARRGGBB pixels to an RGBA image.
func FrameImage(frame *video.FrameBuffer) *image.RGBA {
	w, h := int(frame.Width()), int(frame.Height())
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := range frame.ToSlice() {
		idx := i * 4
		img.Pix[idx] = byte(px >> 16)
		img.Pix[idx+1] = byte(px >> 8)
		img.Pix[idx+2] = byte(px)
		img.Pix[idx+3] = byte(px >> 24)
	}
	return img
}

// DisplayAspect doubles the line count so that the 768 pixel wide raster
// comes out close to a 4:3 picture.
func DisplayAspect(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()*2))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// SaveFramePNG writes frame to path as a PNG, line-doubled when aspect is set.
func SaveFramePNG(frame *video.FrameBuffer, path string, aspect bool) error {
	var img image.Image = FrameImage(frame)
	if aspect {
		img = DisplayAspect(img)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %v", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %v", err)
	}

	b := img.Bounds()
	slog.Info("Snapshot saved", "path", path, "size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "format", "PNG")
	return nil
}

// SaveFramePNGToDir saves a framebuffer as PNG with timestamp to a specific
// directory, or the working directory when directory is empty. It returns
// the path written.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("no frame data available for snapshot")
	}

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %v", err)
		}
		outputDir = cwd
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", baseName, timestamp))
	return path, SaveFramePNG(frame, path, true)
}
