package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/go-plotutils/internal/colors"
)

// ValidationError is one problem with a parameter.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a parameter validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues, such as ignored page options.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Validate checks every parameter a device might read.
func (p *Params) Validate() *ValidationResult {
	result := &ValidationResult{}

	if _, ignored, err := LookupPageSize(p.PageSize); err != nil {
		result.AddError("PAGESIZE", err.Error())
	} else {
		for _, opt := range ignored {
			result.AddWarning("PAGESIZE", fmt.Sprintf("option %q is not supported and will be ignored", opt))
		}
	}

	if _, err := colors.Parse(p.BgColor); err != nil {
		result.AddError("BG_COLOR", err.Error())
	}
	if p.TransparentColor != "" {
		if _, err := colors.Parse(p.TransparentColor); err != nil {
			result.AddError("TRANSPARENT_COLOR", err.Error())
		}
	}

	if w, h, err := p.Bitmap(); err != nil {
		result.AddError("BITMAPSIZE", err.Error())
	} else if w > 10000 || h > 10000 {
		result.AddWarning("BITMAPSIZE", fmt.Sprintf("unusually large bitmap %dx%d", w, h))
	}

	switch p.HPGLVersion {
	case "1", "1.5", "2":
	default:
		result.AddError("HPGL_VERSION", fmt.Sprintf("must be 1, 1.5 or 2, got %q", p.HPGLVersion))
	}
	if _, err := ParsePens(p.HPGLPens); err != nil {
		result.AddError("HPGL_PENS", err.Error())
	}

	switch p.Rotation {
	case 0, 90, 180, 270:
	default:
		result.AddError("ROTATION", fmt.Sprintf("must be 0, 90, 180 or 270, got %d", p.Rotation))
	}

	if p.MaxLineLength < 0 {
		result.AddError("MAX_LINE_LENGTH", fmt.Sprintf("must be non-negative, got %d", p.MaxLineLength))
	} else if p.MaxLineLength > 0 && p.MaxLineLength < 2 {
		result.AddWarning("MAX_LINE_LENGTH", "values below 2 are raised to 2")
	}

	return result
}

// Pen is an entry of an HP-GL pen carousel.
type Pen struct {
	Number int
	Color  colors.RGB
}

// MaxPens is the largest HP-GL pen number.
const MaxPens = 31

// ParsePens parses an HPGL_PENS list such as "1=black:2=red:3=#00ff00".
// Pen 0 is reserved for white.
func ParsePens(spec string) ([]Pen, error) {
	var pens []Pen
	seen := make(map[int]bool)
	for _, field := range strings.Split(spec, ":") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		ns, name, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("pen entry %q lacks '='", field)
		}
		n, err := strconv.Atoi(strings.TrimSpace(ns))
		if err != nil || n < 1 || n > MaxPens {
			return nil, fmt.Errorf("pen number %q must be 1..%d", ns, MaxPens)
		}
		if seen[n] {
			return nil, fmt.Errorf("pen %d defined twice", n)
		}
		c, err := colors.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("pen %d: %w", n, err)
		}
		seen[n] = true
		pens = append(pens, Pen{Number: n, Color: c})
	}
	if len(pens) == 0 {
		return nil, fmt.Errorf("no pens defined")
	}
	return pens, nil
}
