package config

import (
	"errors"
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in parameter values:
// ${VAR}, ${VAR:-default} and $VAR.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// Unset variables without a default expand to the empty string.
func ExpandEnv(s string) string {
	return expandWith(s, os.Getenv)
}

func expandWith(s string, getenv func(string) string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") {
			inner := match[2 : len(match)-1]
			if name, def, ok := strings.Cut(inner, ":-"); ok {
				if val := getenv(name); val != "" {
					return val
				}
				return def
			}
			return getenv(inner)
		}
		return getenv(match[1:])
	})
}

// ExpandEnvParams expands environment variable references in every string
// parameter in place.
func ExpandEnvParams(p *Params) {
	if p == nil {
		return
	}
	for _, s := range []*string{
		&p.PageSize, &p.BgColor, &p.BitmapSize, &p.HPGLVersion, &p.HPGLPens,
		&p.Term, &p.Display, &p.TransparentColor,
	} {
		*s = ExpandEnv(*s)
	}
}

// LoadEnv sets every parameter whose name is a non-empty environment
// variable, as libplot does. lookup is usually os.LookupEnv. All bad values
// are reported together; good ones are applied regardless.
func LoadEnv(p *Params, lookup func(string) (string, bool)) error {
	var errs []error
	for _, pp := range params {
		v, ok := lookup(pp.name)
		if !ok || v == "" {
			continue
		}
		if err := p.Set(pp.name, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
