// Package metafile encodes and decodes GNU graphics metafiles, the
// device-independent output of the meta device, and plays them back onto a
// Plotter. Three encodings are supported: GNU binary, GNU portable (ASCII)
// and the traditional Unix plot(5) format with 16-bit integers.
package metafile

// Opcodes. Integer forms come first, then the floating-point forms.
const (
	OpAlabel       = 'T'
	OpArc          = 'a'
	OpArcRel       = 'A'
	OpBezier2      = 'q'
	OpBezier2Rel   = 'r'
	OpBezier3      = 'y'
	OpBezier3Rel   = 'z'
	OpBgColor      = '~'
	OpBox          = 'B'
	OpBoxRel       = 'H'
	OpCapMod       = 'K'
	OpCircle       = 'c'
	OpCircleRel    = 'G'
	OpClosePath    = 'k'
	OpClosePl      = 'x'
	OpComment      = '#'
	OpCont         = 'n'
	OpContRel      = 'N'
	OpEllArc       = '?'
	OpEllArcRel    = '/'
	OpEllipse      = '+'
	OpEllipseRel   = '='
	OpEndPath      = 'E'
	OpEndSubpath   = ']'
	OpErase        = 'e'
	OpFillColor    = 'D'
	OpFillMod      = 'g'
	OpFillType     = 'L'
	OpFontName     = 'F'
	OpFontSize     = 'S'
	OpJoinMod      = 'J'
	OpLabel        = 't'
	OpLine         = 'l'
	OpLineDash     = 'd'
	OpLineMod      = 'f'
	OpLineRel      = 'I'
	OpLineWidth    = 'W'
	OpMarker       = 'Y'
	OpMarkerRel    = 'Z'
	OpMove         = 'm'
	OpMoveRel      = 'M'
	OpOpenPl       = 'o'
	OpOrientation  = 'b'
	OpPenColor     = '-'
	OpPenType      = 'h'
	OpPoint        = 'p'
	OpPointRel     = 'P'
	OpRestoreState = 'O'
	OpSaveState    = 'U'
	OpSpace        = 's'
	OpSpace2       = ':'
	OpTextAngle    = 'R'

	OpFArc        = '1'
	OpFArcRel     = '2'
	OpFBezier2    = '`'
	OpFBezier2Rel = '\''
	OpFBezier3    = ','
	OpFBezier3Rel = '.'
	OpFBox        = '3'
	OpFBoxRel     = '4'
	OpFCircle     = '5'
	OpFCircleRel  = '6'
	OpFConcat     = '\\'
	OpFCont       = ')'
	OpFContRel    = '_'
	OpFEllArc     = '}'
	OpFEllArcRel  = '|'
	OpFEllipse    = '{'
	OpFEllipseRel = '['
	OpFFontSize   = '7'
	OpFLine       = '8'
	OpFLineDash   = 'w'
	OpFLineRel    = '9'
	OpFLineWidth  = '0'
	OpFMarker     = '!'
	OpFMarkerRel  = '@'
	OpFMiterLimit = 'i'
	OpFMove       = '$'
	OpFMoveRel    = '%'
	OpFPoint      = '^'
	OpFPointRel   = '&'
	OpFSetMatrix  = 'j'
	OpFSpace      = '*'
	OpFSpace2     = ';'
	OpFTextAngle  = '('
)

// Spec describes an opcode. Sig lists its argument kinds:
//
//	i  integer
//	f  real
//	c  single character
//	s  string, terminated by a newline
//	I  integer dash array: count, lengths, offset
//	F  real dash array: count, lengths, offset
type Spec struct {
	Code byte
	Name string
	Sig  string
	// Traditional marks opcodes of the original plot(5) format.
	Traditional bool
}

var specs = [...]Spec{
	{OpAlabel, "alabel", "ccs", false},
	{OpArc, "arc", "iiiiii", true},
	{OpArcRel, "arcrel", "iiiiii", false},
	{OpBezier2, "bezier2", "iiiiii", false},
	{OpBezier2Rel, "bezier2rel", "iiiiii", false},
	{OpBezier3, "bezier3", "iiiiiiii", false},
	{OpBezier3Rel, "bezier3rel", "iiiiiiii", false},
	{OpBgColor, "bgcolor", "iii", false},
	{OpBox, "box", "iiii", false},
	{OpBoxRel, "boxrel", "iiii", false},
	{OpCapMod, "capmod", "s", false},
	{OpCircle, "circle", "iii", true},
	{OpCircleRel, "circlerel", "iii", false},
	{OpClosePath, "closepath", "", false},
	{OpClosePl, "closepl", "", false},
	{OpComment, "comment", "s", false},
	{OpCont, "cont", "ii", true},
	{OpContRel, "contrel", "ii", false},
	{OpEllArc, "ellarc", "iiiiii", false},
	{OpEllArcRel, "ellarcrel", "iiiiii", false},
	{OpEllipse, "ellipse", "iiiii", false},
	{OpEllipseRel, "ellipserel", "iiiii", false},
	{OpEndPath, "endpath", "", false},
	{OpEndSubpath, "endsubpath", "", false},
	{OpErase, "erase", "", true},
	{OpFillColor, "fillcolor", "iii", false},
	{OpFillMod, "fillmod", "s", false},
	{OpFillType, "filltype", "i", false},
	{OpFontName, "fontname", "s", false},
	{OpFontSize, "fontsize", "i", false},
	{OpJoinMod, "joinmod", "s", false},
	{OpLabel, "label", "s", true},
	{OpLine, "line", "iiii", true},
	{OpLineDash, "linedash", "I", false},
	{OpLineMod, "linemod", "s", true},
	{OpLineRel, "linerel", "iiii", false},
	{OpLineWidth, "linewidth", "i", false},
	{OpMarker, "marker", "iiii", false},
	{OpMarkerRel, "markerrel", "iiii", false},
	{OpMove, "move", "ii", true},
	{OpMoveRel, "moverel", "ii", false},
	{OpOpenPl, "openpl", "", false},
	{OpOrientation, "orientation", "i", false},
	{OpPenColor, "pencolor", "iii", false},
	{OpPenType, "pentype", "i", false},
	{OpPoint, "point", "ii", true},
	{OpPointRel, "pointrel", "ii", false},
	{OpRestoreState, "restorestate", "", false},
	{OpSaveState, "savestate", "", false},
	{OpSpace, "space", "iiii", true},
	{OpSpace2, "space2", "iiiiii", false},
	{OpTextAngle, "textangle", "i", false},

	{OpFArc, "farc", "ffffff", false},
	{OpFArcRel, "farcrel", "ffffff", false},
	{OpFBezier2, "fbezier2", "ffffff", false},
	{OpFBezier2Rel, "fbezier2rel", "ffffff", false},
	{OpFBezier3, "fbezier3", "ffffffff", false},
	{OpFBezier3Rel, "fbezier3rel", "ffffffff", false},
	{OpFBox, "fbox", "ffff", false},
	{OpFBoxRel, "fboxrel", "ffff", false},
	{OpFCircle, "fcircle", "fff", false},
	{OpFCircleRel, "fcirclerel", "fff", false},
	{OpFConcat, "fconcat", "ffffff", false},
	{OpFCont, "fcont", "ff", false},
	{OpFContRel, "fcontrel", "ff", false},
	{OpFEllArc, "fellarc", "ffffff", false},
	{OpFEllArcRel, "fellarcrel", "ffffff", false},
	{OpFEllipse, "fellipse", "fffff", false},
	{OpFEllipseRel, "fellipserel", "fffff", false},
	{OpFFontSize, "ffontsize", "f", false},
	{OpFLine, "fline", "ffff", false},
	{OpFLineDash, "flinedash", "F", false},
	{OpFLineRel, "flinerel", "ffff", false},
	{OpFLineWidth, "flinewidth", "f", false},
	{OpFMarker, "fmarker", "ffif", false},
	{OpFMarkerRel, "fmarkerrel", "ffif", false},
	{OpFMiterLimit, "fmiterlimit", "f", false},
	{OpFMove, "fmove", "ff", false},
	{OpFMoveRel, "fmoverel", "ff", false},
	{OpFPoint, "fpoint", "ff", false},
	{OpFPointRel, "fpointrel", "ff", false},
	{OpFSetMatrix, "fsetmatrix", "ffffff", false},
	{OpFSpace, "fspace", "ffff", false},
	{OpFSpace2, "fspace2", "ffffff", false},
	{OpFTextAngle, "ftextangle", "f", false},
}

var byCode = func() [256]*Spec {
	var t [256]*Spec
	for i := range specs {
		t[specs[i].Code] = &specs[i]
	}
	return t
}()

// Lookup returns the spec of an opcode.
func Lookup(code byte) (Spec, bool) {
	if s := byCode[code]; s != nil {
		return *s, true
	}
	return Spec{}, false
}

// ByName returns the spec of a named operation.
func ByName(name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Command is one decoded metafile instruction. Numeric and character
// arguments are in Args in wire order (a dash array contributes its count,
// its lengths and its offset); a string argument is in Text.
type Command struct {
	Op   byte
	Args []float64
	Text string
}

// Name returns the operation name of c.
func (c Command) Name() string {
	if s, ok := Lookup(c.Op); ok {
		return s.Name
	}
	return "unknown"
}
