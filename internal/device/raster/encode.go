package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"

	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func (d *Device) encode() error {
	switch d.format {
	case PNG:
		return png.Encode(d.w, d.withTransparency(d.img))
	case BMP:
		return bmp.Encode(d.w, d.img)
	case TIFF:
		return tiff.Encode(d.w, d.withTransparency(d.img), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case GIF:
		return d.encodeGIF()
	case PNM:
		return encodePNM(d.w, d.img)
	}
	return fmt.Errorf("unknown raster format %q", d.format)
}

// withTransparency returns img with the transparent color cleared, or img
// itself when there is none.
func (d *Device) withTransparency(img *image.RGBA) image.Image {
	if d.trans == nil {
		return img
	}
	t := d.trans.RGBA()
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] == t.R && out.Pix[i+1] == t.G && out.Pix[i+2] == t.B {
			out.Pix[i+3] = 0
		}
	}
	return out
}

// paletteOf returns the colors of img, or nil if there are more than 256.
func paletteOf(img *image.RGBA) color.Palette {
	seen := map[color.RGBA]bool{}
	var p color.Palette
	for i := 0; i < len(img.Pix); i += 4 {
		c := color.RGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: 0xff}
		if seen[c] {
			continue
		}
		if len(p) == 256 {
			return nil
		}
		seen[c] = true
		p = append(p, c)
	}
	return p
}

// paletted converts a frame to indexed color, with the exact colors when
// they fit and the Plan 9 palette otherwise.
func (d *Device) paletted(img *image.RGBA) *image.Paletted {
	p := paletteOf(img)
	if p == nil {
		p = append(color.Palette(nil), palette.Plan9...)
	}
	if d.trans != nil {
		t := d.trans.RGBA()
		for i, c := range p {
			if r, g, b, _ := c.RGBA(); uint8(r>>8) == t.R && uint8(g>>8) == t.G && uint8(b>>8) == t.B {
				p[i] = color.NRGBA{R: t.R, G: t.G, B: t.B}
				break
			}
		}
	}
	out := image.NewPaletted(img.Bounds(), p)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func (d *Device) encodeGIF() error {
	anim := &gif.GIF{}
	for _, f := range d.frames {
		anim.Image = append(anim.Image, d.paletted(f))
		anim.Delay = append(anim.Delay, 0)
	}
	if len(anim.Image) > 1 {
		anim.LoopCount = 0
	}
	return gif.EncodeAll(d.w, anim)
}

// encodePNM writes the smallest binary netpbm variant that holds img: a
// bitmap when it is black and white only, a graymap when it is gray, and a
// pixmap otherwise.
func encodePNM(w io.Writer, img *image.RGBA) error {
	format := netpbm.PBM
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		if r != g || g != b {
			format = netpbm.PPM
			break
		}
		if r != 0 && r != 0xff {
			format = netpbm.PGM
		}
	}
	return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: format, MaxValue: 255})
}
