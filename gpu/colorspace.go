// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import "github.com/gogpu/gputypes"

// ColorSpace selects the color space of an onscreen surface.
type ColorSpace uint8

const (
	// ColorSpaceSDR is the standard 8-bit sRGB surface.
	ColorSpaceSDR ColorSpace = iota

	// ColorSpaceBT2020PQ is the HDR surface variant: BT.2020 primaries with
	// the PQ transfer function on a half-float surface.
	ColorSpaceBT2020PQ
)

// ColorSpaceFor returns the HDR color space when hdr is set and the
// standard one otherwise.
func ColorSpaceFor(hdr bool) ColorSpace {
	if hdr {
		return ColorSpaceBT2020PQ
	}
	return ColorSpaceSDR
}

// String returns the color space name.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceSDR:
		return "sdr"
	case ColorSpaceBT2020PQ:
		return "bt2020-pq"
	default:
		return "unknown"
	}
}

// IsHDR reports whether c is a high dynamic range color space.
func (c ColorSpace) IsHDR() bool { return c == ColorSpaceBT2020PQ }

// Format returns the surface texture format for c. SDR surfaces use the
// preferred format of the host (sdr); undefined falls back to BGRA8Unorm.
func (c ColorSpace) Format(sdr gputypes.TextureFormat) gputypes.TextureFormat {
	if c.IsHDR() {
		return gputypes.TextureFormatRGBA16Float
	}
	if sdr == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return sdr
}
