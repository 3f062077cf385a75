// Package pinfile reads and writes descry pin files: plain-text lists
// of descriptor URIs, each optionally constrained by a version
// pattern, that `descry pin` resolves into concrete pinned URIs.
package pinfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const header = "# descry pinfile format: version 1.0\n"

// Requirement is one line of a pinfile: a descriptor URI plus an
// optional version pattern such as v1.2.x.
type Requirement struct {
	URI     string
	Pattern string
}

// Parser parses pinfiles.
type Parser struct{}

// NewParser creates a new pinfile parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads requirements from a pinfile. Blank lines and lines
// starting with # are skipped; every other line holds a descriptor
// URI optionally followed by a version pattern.
func (p *Parser) Parse(path string) ([]Requirement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pinfile: %w", err)
	}
	defer file.Close()

	var reqs []Requirement
	lineNo := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			reqs = append(reqs, Requirement{URI: fields[0]})
		case 2:
			reqs = append(reqs, Requirement{URI: fields[0], Pattern: fields[1]})
		default:
			return nil, fmt.Errorf("pinfile line %d: expected uri and optional pattern, got %q", lineNo, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pinfile: %w", err)
	}
	return reqs, nil
}

// Emitter writes resolved pin sets.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new pinfile emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the pinned URIs, sorted, under the format header.
func (e *Emitter) Emit(uris []string) error {
	sorted := make([]string, len(uris))
	copy(sorted, uris)
	sort.Strings(sorted)

	if _, err := fmt.Fprint(e.w, header); err != nil {
		return err
	}
	for _, uri := range sorted {
		if _, err := fmt.Fprintf(e.w, "%s\n", uri); err != nil {
			return err
		}
	}
	return nil
}
