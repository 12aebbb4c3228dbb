package ps

import (
	"strings"

	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// standardFonts are the 35 fonts resident in every PostScript printer.
var standardFonts = []string{
	"AvantGarde-Book", "AvantGarde-BookOblique", "AvantGarde-Demi", "AvantGarde-DemiOblique",
	"Bookman-Demi", "Bookman-DemiItalic", "Bookman-Light", "Bookman-LightItalic",
	"Courier", "Courier-Bold", "Courier-BoldOblique", "Courier-Oblique",
	"Helvetica", "Helvetica-Bold", "Helvetica-BoldOblique", "Helvetica-Oblique",
	"Helvetica-Narrow", "Helvetica-Narrow-Bold", "Helvetica-Narrow-BoldOblique", "Helvetica-Narrow-Oblique",
	"NewCenturySchlbk-Bold", "NewCenturySchlbk-BoldItalic", "NewCenturySchlbk-Italic", "NewCenturySchlbk-Roman",
	"Palatino-Bold", "Palatino-BoldItalic", "Palatino-Italic", "Palatino-Roman",
	"Symbol",
	"Times-Bold", "Times-BoldItalic", "Times-Italic", "Times-Roman",
	"ZapfChancery-MediumItalic", "ZapfDingbats",
}

// FontName maps a font name onto a resident PostScript font. Other names
// (Hershey, HP-GL stick fonts) get the resident font of the same family
// and style.
func FontName(name string) string {
	for _, f := range standardFonts {
		if strings.EqualFold(f, name) {
			return f
		}
	}
	face := plot.ResolveFont(name)
	n := strings.ToLower(name)
	var family [4]string
	switch {
	case face.Mono:
		family = [4]string{"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique"}
	case strings.Contains(n, "times") || (strings.Contains(n, "serif") && !strings.Contains(n, "sans")):
		family = [4]string{"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic"}
	default:
		family = [4]string{"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique"}
	}
	switch face.Style {
	case plot.FontStyleBold:
		return family[1]
	case plot.FontStyleItalic:
		return family[2]
	case plot.FontStyleBoldItalic:
		return family[3]
	}
	return family[0]
}
