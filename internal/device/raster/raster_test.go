package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/spakin/netpbm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-plotutils/internal/colors"
	"github.com/opd-ai/go-plotutils/internal/config"
	"github.com/opd-ai/go-plotutils/internal/geom"
	"github.com/opd-ai/go-plotutils/pkg/plot"
)

func small() *config.Params {
	p := config.DefaultParams()
	p.BitmapSize = "100x100"
	return &p
}

func render(t *testing.T, format Format, params *config.Params, draw func(p *plot.Plotter)) []byte {
	t.Helper()
	var buf bytes.Buffer
	dev, err := New(&buf, format, params)
	require.NoError(t, err)
	p := plot.New(dev)
	require.NoError(t, p.Open())
	draw(p)
	require.NoError(t, p.Close())
	return buf.Bytes()
}

func TestLine(t *testing.T) {
	data := render(t, PNG, small(), func(p *plot.Plotter) {
		require.NoError(t, p.Line(0, 0.505, 1, 0.505))
	})
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())

	r, g, b, _ := img.At(50, 49).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0}, [3]uint32{r, g, b}, "line pixel")
	r, g, b, _ = img.At(50, 40).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "background")
}

func TestFillRules(t *testing.T) {
	square := func(lo, hi float64) []geom.Point {
		return []geom.Point{geom.Pt(lo, lo), geom.Pt(hi, lo), geom.Pt(hi, hi), geom.Pt(lo, hi)}
	}
	rings := [][]geom.Point{square(10, 90), square(30, 70)}
	black := colors.Black.RGBA()
	white := colors.White.RGBA()

	tests := []struct {
		rule plot.FillRule
		hole color.RGBA
	}{
		{plot.EvenOdd, white},
		{plot.NonZero, black},
	}
	for _, tt := range tests {
		t.Run(tt.rule.String(), func(t *testing.T) {
			dev, err := New(&bytes.Buffer{}, PNG, small())
			require.NoError(t, err)
			s := &plot.State{FillColor: colors.Black, FillLevel: 1}
			require.NoError(t, dev.BeginPage(1, s))
			require.NoError(t, dev.FillRegion(s, rings, tt.rule))
			assert.Equal(t, black, dev.Image().RGBAAt(20, 50))
			assert.Equal(t, tt.hole, dev.Image().RGBAAt(50, 50))
			assert.Equal(t, white, dev.Image().RGBAAt(95, 95))
		})
	}
}

func TestGIFFramePerErase(t *testing.T) {
	data := render(t, GIF, small(), func(p *plot.Plotter) {
		require.NoError(t, p.Line(0, 0, 1, 1))
		require.NoError(t, p.Erase())
		require.NoError(t, p.Line(0, 1, 1, 0))
	})
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, anim.Image, 2)
}

func TestTransparentColor(t *testing.T) {
	params := small()
	params.TransparentColor = "white"
	data := render(t, PNG, params, func(p *plot.Plotter) {
		require.NoError(t, p.Line(0, 0.505, 1, 0.505))
	})
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, _, _, a := img.At(5, 5).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(50, 49).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestPNMVariants(t *testing.T) {
	tests := []struct {
		name   string
		draw   func(t *testing.T, p *plot.Plotter)
		magic  string
		format netpbm.Format
	}{
		{"bitmap", func(t *testing.T, p *plot.Plotter) {
			require.NoError(t, p.Line(0, 0, 1, 1))
		}, "P4", netpbm.PBM},
		{"graymap", func(t *testing.T, p *plot.Plotter) {
			require.NoError(t, p.FillType(0x8000))
			require.NoError(t, p.Box(0.2, 0.2, 0.8, 0.8))
		}, "P5", netpbm.PGM},
		{"pixmap", func(t *testing.T, p *plot.Plotter) {
			require.NoError(t, p.PenColorName("red"))
			require.NoError(t, p.Line(0, 0, 1, 1))
		}, "P6", netpbm.PPM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := render(t, PNM, small(), func(p *plot.Plotter) { tt.draw(t, p) })
			assert.True(t, bytes.HasPrefix(data, []byte(tt.magic)), "got %q", data[:2])
			img, err := netpbm.Decode(bytes.NewReader(data), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.format, img.Format())
			assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
		})
	}
}

func TestBitmapPacking(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 1))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{A: 0xff})
	img.SetRGBA(8, 0, color.RGBA{A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, encodePNM(&buf, img))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("P4")))

	out, err := netpbm.Decode(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, netpbm.PBM, out.Format())
	gray := func(x int) uint8 { return color.GrayModel.Convert(out.At(x, 0)).(color.Gray).Y }
	assert.Equal(t, uint8(0), gray(0))
	for x := 1; x < 8; x++ {
		assert.Equal(t, uint8(0xff), gray(x), "x=%d", x)
	}
	assert.Equal(t, uint8(0), gray(8))
}

func TestOtherFormatsEncode(t *testing.T) {
	for _, f := range []Format{BMP, TIFF} {
		t.Run(string(f), func(t *testing.T) {
			data := render(t, f, small(), func(p *plot.Plotter) {
				require.NoError(t, p.Circle(0.5, 0.5, 0.25))
			})
			assert.NotEmpty(t, data)
		})
	}
}

func TestBadParameters(t *testing.T) {
	params := small()
	params.BitmapSize = "huge"
	_, err := New(&bytes.Buffer{}, PNG, params)
	assert.ErrorContains(t, err, "BITMAPSIZE")

	_, err = New(&bytes.Buffer{}, "jpeg", nil)
	assert.Error(t, err)
}

func TestEmulateColor(t *testing.T) {
	params := small()
	params.EmulateColor = true
	data := render(t, PNG, params, func(p *plot.Plotter) {
		require.NoError(t, p.FillColorName("red"))
		require.NoError(t, p.FillType(1))
		require.NoError(t, p.Box(0.2, 0.2, 0.8, 0.8))
	})
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, _ := img.At(50, 50).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
	assert.Equal(t, uint32(76), r>>8)
}
