// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package preprocess

import (
	"image"
	"slices"

	"github.com/disintegration/imaging"
)

// median3 applies a 3x3 median filter. Edge pixels use the clamped
// neighbourhood.
func median3(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(src.Bounds())
	var win [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					win[n] = src.Pix[clamp(y+dy, h)*src.Stride+clamp(x+dx, w)]
					n++
				}
			}
			s := win[:]
			slices.Sort(s)
			dst.Pix[y*dst.Stride+x] = s[4]
		}
	}
	return dst
}

// adaptiveThreshold binarizes src against a Gaussian-weighted local mean:
// a pixel becomes white when it is brighter than mean-c. The Gaussian sigma
// is derived from the block size the same way OpenCV does.
func adaptiveThreshold(src *image.Gray, block int, c float64) *image.Gray {
	sigma := 0.3*(float64(block-1)*0.5-1) + 0.8
	mean := imaging.Blur(src, sigma)

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := float64(mean.Pix[y*mean.Stride+x*4])
			if float64(src.Pix[y*src.Stride+x]) > m-c {
				dst.Pix[y*dst.Stride+x] = 0xff
			}
		}
	}
	return dst
}

// closing is a dilation followed by an erosion with a k x k square. On
// black-on-white text it fills pinholes and removes dark speckle smaller
// than the kernel.
func closing(src *image.Gray, k int) *image.Gray {
	if k <= 1 {
		return src
	}
	return morph(morph(src, k, maxOf), k, minOf)
}

func morph(src *image.Gray, k int, pick func(a, b uint8) uint8) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	lo := -(k - 1) / 2
	hi := lo + k - 1
	dst := image.NewGray(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.Pix[y*src.Stride+x]
			for dy := lo; dy <= hi; dy++ {
				for dx := lo; dx <= hi; dx++ {
					v = pick(v, src.Pix[clamp(y+dy, h)*src.Stride+clamp(x+dx, w)])
				}
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}

func maxOf(a, b uint8) uint8 { return max(a, b) }
func minOf(a, b uint8) uint8 { return min(a, b) }

func clamp(v, n int) int {
	switch {
	case v < 0:
		return 0
	case v >= n:
		return n - 1
	}
	return v
}
