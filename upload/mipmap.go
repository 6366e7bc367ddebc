// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package upload

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/gputypes"
)

// downsamplePixels rescales raw pixel data from w x h to nw x nh.
// Four channel formats go through x/image's bilinear scaler on RGBA
// images, which is channel order agnostic, so BGRA data passes through
// unchanged in layout. Single channel data uses image.Gray.
func downsamplePixels(src []byte, format gputypes.TextureFormat, w, h, nw, nh uint32) ([]byte, error) {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		srcImg := &image.RGBA{Pix: src, Stride: int(w) * 4, Rect: image.Rect(0, 0, int(w), int(h))}
		dstImg := image.NewRGBA(image.Rect(0, 0, int(nw), int(nh)))
		draw.BiLinear.Scale(dstImg, dstImg.Rect, srcImg, srcImg.Rect, draw.Src, nil)
		return dstImg.Pix, nil
	case gputypes.TextureFormatR8Unorm:
		srcImg := &image.Gray{Pix: src, Stride: int(w), Rect: image.Rect(0, 0, int(w), int(h))}
		dstImg := image.NewGray(image.Rect(0, 0, int(nw), int(nh)))
		draw.BiLinear.Scale(dstImg, dstImg.Rect, srcImg, srcImg.Rect, draw.Src, nil)
		return dstImg.Pix, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}
