package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/opd-ai/go-plotutils/internal/geom"
)

// ReadPoints reads whitespace-separated x y pairs. A trailing unpaired
// value is dropped with a warning.
func ReadPoints(r io.Reader, warn *Warner) ([]geom.Point, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var vals []float64
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("bad data value %q", sc.Text())
		}
		vals = append(vals, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(vals)%2 != 0 {
		if warn != nil {
			warn.Warn("odd number of data values, last one ignored")
		}
		vals = vals[:len(vals)-1]
	}
	pts := make([]geom.Point, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		pts = append(pts, geom.Pt(vals[i], vals[i+1]))
	}
	return pts, nil
}
