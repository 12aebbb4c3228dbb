package config

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// LegacyParser parses parameter files with one "KEY value" (or
// "KEY=value") pair per line. Blank lines and lines starting with # are
// skipped.
type LegacyParser struct{}

// NewLegacyParser creates a new LegacyParser instance.
func NewLegacyParser() *LegacyParser {
	return &LegacyParser{}
}

// Parse applies the pairs in content to p. Parsing stops at the first bad
// line; pairs before it have been applied.
func (lp *LegacyParser) Parse(content []byte, p *Params) error {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value := splitDirective(line)
		if err := p.Set(key, value); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading parameters: %w", err)
	}
	return nil
}

func splitDirective(line string) (key, value string) {
	i := strings.IndexAny(line, " \t=")
	if i < 0 {
		return line, ""
	}
	key = line[:i]
	value = strings.TrimSpace(line[i+1:])
	value = strings.TrimPrefix(value, "=")
	value = strings.TrimSpace(value)
	return key, strings.Trim(value, `"`)
}
