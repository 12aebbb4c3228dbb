package config

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Parser reads parameter files in any supported format.
type Parser struct {
	legacyParser *LegacyParser
	luaParser    *LuaParamsParser
}

// NewParser creates a Parser for every format.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaParamsParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}
	return &Parser{
		legacyParser: NewLegacyParser(),
		luaParser:    luaParser,
	}, nil
}

// ParseFile reads a parameter file and applies it to p, detecting the
// format from the file extension or, failing that, the content.
func (ps *Parser) ParseFile(path string, p *Params) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read parameter file %s: %w", path, err)
	}
	if err := ps.Parse(content, DetectFormat(path, content), p); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ParseFromFS is ParseFile on a file system.
func (ps *Parser) ParseFromFS(fsys fs.FS, path string, p *Params) error {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read parameters from FS %s: %w", path, err)
	}
	return ps.Parse(content, DetectFormat(path, content), p)
}

// ParseReader reads parameters in the given format from r.
func (ps *Parser) ParseReader(r io.Reader, format Format, p *Params) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read parameters: %w", err)
	}
	return ps.Parse(content, format, p)
}

// Parse applies content in the given format to p. Fields the content does
// not mention keep their values. String values are environment-expanded.
func (ps *Parser) Parse(content []byte, format Format, p *Params) error {
	var err error
	switch format {
	case FormatLua:
		err = ps.luaParser.Parse(content, p)
	case FormatTOML:
		err = decodeTOML(content, p)
	case FormatYAML:
		err = decodeYAML(content, p)
	case FormatLegacy:
		err = ps.legacyParser.Parse(content, p)
	default:
		err = fmt.Errorf("unknown format %d", format)
	}
	if err != nil {
		return err
	}
	ExpandEnvParams(p)
	return nil
}

// Close releases resources associated with the parser.
func (ps *Parser) Close() error {
	if ps.luaParser != nil {
		return ps.luaParser.Close()
	}
	return nil
}

var (
	luaParamsPattern = regexp.MustCompile(`(?m)^\s*plot\.params(\s*=|\.\w+\s*=)`)
	yamlPattern      = regexp.MustCompile(`(?m)^\s*[a-z_]+\s*:\s`)
	tomlPattern      = regexp.MustCompile(`(?m)^\s*[a-z_]+\s*=\s*\S`)
)

// DetectFormat guesses the format of a parameter file. The extension wins
// when it is one of .lua, .toml, .yaml or .yml.
func DetectFormat(path string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return FormatLua
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	switch {
	case luaParamsPattern.Match(content):
		return FormatLua
	case yamlPattern.Match(content):
		return FormatYAML
	case tomlPattern.Match(content):
		// lowercase keys with "=" are TOML; libplot names are uppercase
		return FormatTOML
	default:
		return FormatLegacy
	}
}

func decodeTOML(content []byte, p *Params) error {
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return fmt.Errorf("failed to parse TOML parameters: %w", err)
	}
	return nil
}

func decodeYAML(content []byte, p *Params) error {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse YAML parameters: %w", err)
	}
	return nil
}
