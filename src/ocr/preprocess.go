package ocr

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

const (
	// minHeight is the upscale target; glyphs shorter than this read poorly.
	minHeight = 48
	// uniformSpread is the gray min/max spread below which a region holds no text.
	uniformSpread = 8
)

// preprocess converts img to a binarized dark-on-light PNG. uniform reports
// a region with nothing to read.
func preprocess(img image.Image) (png []byte, uniform bool, err error) {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, false, fmt.Errorf("convert: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	lo, hi, _, _ := gocv.MinMaxLoc(gray)
	if hi-lo < uniformSpread {
		return nil, true, nil
	}

	scaled := gray
	if gray.Rows() < minHeight {
		f := math.Ceil(float64(minHeight) / float64(gray.Rows()))
		up := gocv.NewMat()
		defer up.Close()
		gocv.Resize(gray, &up, image.Point{}, f, f, gocv.InterpolationCubic)
		scaled = up
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(scaled, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	// Light text on a dark panel thresholds to mostly black; flip it.
	if gocv.CountNonZero(binary)*2 < binary.Rows()*binary.Cols() {
		gocv.BitwiseNot(binary, &binary)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, false, fmt.Errorf("encode: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, false, nil
}
