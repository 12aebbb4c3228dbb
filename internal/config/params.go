package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownParam is returned by Set and Get for a name that is not a
// plotter parameter.
var ErrUnknownParam = errors.New("unknown parameter")

// param binds a parameter name to its field.
type param struct {
	name string
	set  func(p *Params, v string) error
	get  func(p *Params) string
}

func stringParam(name string, field func(p *Params) *string) param {
	return param{
		name: name,
		set:  func(p *Params, v string) error { *field(p) = v; return nil },
		get:  func(p *Params) string { return *field(p) },
	}
}

func boolParam(name string, field func(p *Params) *bool) param {
	return param{
		name: name,
		set: func(p *Params, v string) error {
			b, err := ParseBool(v)
			if err != nil {
				return err
			}
			*field(p) = b
			return nil
		},
		get: func(p *Params) string { return FormatBool(*field(p)) },
	}
}

func intParam(name string, field func(p *Params) *int) param {
	return param{
		name: name,
		set: func(p *Params, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid integer %q", v)
			}
			*field(p) = n
			return nil
		},
		get: func(p *Params) string { return strconv.Itoa(*field(p)) },
	}
}

var params = []param{
	stringParam("PAGESIZE", func(p *Params) *string { return &p.PageSize }),
	stringParam("BG_COLOR", func(p *Params) *string { return &p.BgColor }),
	stringParam("BITMAPSIZE", func(p *Params) *string { return &p.BitmapSize }),
	boolParam("META_PORTABLE", func(p *Params) *bool { return &p.MetaPortable }),
	stringParam("HPGL_VERSION", func(p *Params) *string { return &p.HPGLVersion }),
	stringParam("HPGL_PENS", func(p *Params) *string { return &p.HPGLPens }),
	boolParam("HPGL_ASSIGN_PENS", func(p *Params) *bool { return &p.HPGLAssignPens }),
	{
		name: "ROTATION",
		set: func(p *Params, v string) error {
			// libplot also accepts yes/no, meaning 90/0
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "yes":
				p.Rotation = 90
				return nil
			case "no":
				p.Rotation = 0
				return nil
			}
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid rotation %q", v)
			}
			p.Rotation = n
			return nil
		},
		get: func(p *Params) string { return strconv.Itoa(p.Rotation) },
	},
	intParam("MAX_LINE_LENGTH", func(p *Params) *int { return &p.MaxLineLength }),
	stringParam("TERM", func(p *Params) *string { return &p.Term }),
	{
		name: "XDRAWABLE_WINDOW",
		set: func(p *Params, v string) error {
			n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 32)
			if err != nil {
				return fmt.Errorf("invalid window id %q", v)
			}
			p.XDrawableWindow = uint32(n)
			return nil
		},
		get: func(p *Params) string { return strconv.FormatUint(uint64(p.XDrawableWindow), 10) },
	},
	stringParam("DISPLAY", func(p *Params) *string { return &p.Display }),
	boolParam("INTERLACE", func(p *Params) *bool { return &p.Interlace }),
	stringParam("TRANSPARENT_COLOR", func(p *Params) *string { return &p.TransparentColor }),
	boolParam("EMULATE_COLOR", func(p *Params) *bool { return &p.EmulateColor }),
}

func lookupParam(name string) (param, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, pp := range params {
		if pp.name == name {
			return pp, true
		}
	}
	return param{}, false
}

// Names returns the parameter names in their canonical order.
func Names() []string {
	out := make([]string, len(params))
	for i, pp := range params {
		out[i] = pp.name
	}
	return out
}

// Set assigns a parameter from its string form. Names are case-insensitive.
func (p *Params) Set(name, value string) error {
	pp, ok := lookupParam(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	if err := pp.set(p, value); err != nil {
		return fmt.Errorf("%s: %w", pp.name, err)
	}
	return nil
}

// Get returns the string form of a parameter.
func (p *Params) Get(name string) (string, error) {
	pp, ok := lookupParam(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return pp.get(p), nil
}

// ParseBool parses the boolean spellings used in parameter files.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// FormatBool returns the libplot spelling of b.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
