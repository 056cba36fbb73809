// Package board locates whiteboard/blackboard regions in lecture frames and
// detects content changes between them.
package board

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/lectio/lectio/internal/models"
)

const (
	// Pixel classification thresholds on the 0..255 greyscale range.
	brightThreshold = 200 // whiteboards
	darkThreshold   = 50  // blackboards

	// Padding added around the detected region, clamped to frame bounds.
	regionPadding = 20

	// Normalized comparison size. Crops are resized here so similarity
	// scores are independent of source resolution and bbox drift.
	normWidth  = 800
	normHeight = 600
)

// FindRegion locates the board in a greyscale frame. The frame is classified
// as whiteboard-like or blackboard-like by comparing bright and dark pixel
// counts; the bounding box encloses all pixels of the dominant class, padded
// by regionPadding. When no pixel crosses either threshold the center 80% of
// the frame is returned.
func FindRegion(gray *image.Gray) models.BBox {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	brightPixels := 0
	darkPixels := 0
	for i := 0; i < len(gray.Pix); i++ {
		p := gray.Pix[i]
		if p > brightThreshold {
			brightPixels++
		}
		if p < darkThreshold {
			darkPixels++
		}
	}

	isWhiteboard := brightPixels > darkPixels

	minX, maxX := width, 0
	minY, maxY := height, 0
	for y := 0; y < height; y++ {
		row := y * gray.Stride
		for x := 0; x < width; x++ {
			p := gray.Pix[row+x]
			var target bool
			if isWhiteboard {
				target = p > brightThreshold
			} else {
				target = p < darkThreshold
			}
			if target {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if minX >= maxX || minY >= maxY {
		return centerRegion(width, height)
	}

	x := max(0, minX-regionPadding)
	y := max(0, minY-regionPadding)
	w := min(width-x, maxX-minX+2*regionPadding)
	h := min(height-y, maxY-minY+2*regionPadding)

	return models.BBox{x, y, w, h}
}

// centerRegion is the degenerate-input fallback: the center 80% of the frame.
func centerRegion(width, height int) models.BBox {
	return models.BBox{
		width / 10,
		height / 10,
		width * 8 / 10,
		height * 8 / 10,
	}
}

// ToGray converts any decoded image to 8-bit greyscale.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// NormalizedCrop crops the frame to bbox, resizes to the fixed comparison
// size and returns the raw greyscale buffer.
func NormalizedCrop(gray *image.Gray, bbox models.BBox) []uint8 {
	rect := image.Rect(bbox[0], bbox[1], bbox[0]+bbox[2], bbox[1]+bbox[3])
	cropped := imaging.Crop(gray, rect)
	resized := imaging.Resize(cropped, normWidth, normHeight, imaging.Lanczos)
	return ToGray(resized).Pix
}
