package survey

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chrissnell/streamflow/pkg/discharge"
	"gopkg.in/yaml.v2"
)

// ErrFormat is returned for survey files of an unrecognized type
var ErrFormat = errors.New("unsupported survey format")

// Load reads a survey from a .yaml, .yml, .json or .csv file. CSV files carry
// sections only; the method and surface parameters come from d.
func Load(path string, d Defaults) (*Survey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s *Survey
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		s, err = ReadYAML(f)
	case ".json":
		s, err = ReadJSON(f)
	case ".csv":
		s, err = ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if s.Method != "" {
		m, err := discharge.ParseMethod(string(s.Method))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		s.Method = m
	}
	s.ApplyDefaults(d)
	return s, nil
}

// ReadYAML decodes a survey document with kebab-case keys
func ReadYAML(r io.Reader) (*Survey, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s Survey
	if err := yaml.UnmarshalStrict(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadJSON decodes a survey document with snake_case keys
func ReadJSON(r io.Reader) (*Survey, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var s Survey
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// csvColumns maps normalized header names to measurement fields
var csvColumns = map[string]func(*Measurement) *float64{
	"width":              func(m *Measurement) *float64 { return &m.Width },
	"depth-first":        func(m *Measurement) *float64 { return &m.DepthFirst },
	"depth-second":       func(m *Measurement) *float64 { return &m.DepthSecond },
	"velocity-first":     func(m *Measurement) *float64 { return &m.VelocityFirst },
	"velocity-second":    func(m *Measurement) *float64 { return &m.VelocitySecond },
	"velocity-08-first":  func(m *Measurement) *float64 { return &m.Velocity08First },
	"velocity-08-second": func(m *Measurement) *float64 { return &m.Velocity08Second },
	"velocity-02-first":  func(m *Measurement) *float64 { return &m.Velocity02First },
	"velocity-02-second": func(m *Measurement) *float64 { return &m.Velocity02Second },
}

// ReadCSV reads one section per row. The header names the columns using the
// YAML keys; underscores are accepted in place of hyphens. Blank cells are zero.
func ReadCSV(r io.Reader) (*Survey, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	fields := make([]func(*Measurement) *float64, len(header))
	seen := map[string]bool{}
	for i, h := range header {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), "_", "-")
		field, ok := csvColumns[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", h)
		}
		fields[i] = field
		seen[name] = true
	}
	for _, required := range []string{"width", "depth-first", "depth-second"} {
		if !seen[required] {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	s := &Survey{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var m Measurement
		line, _ := cr.FieldPos(0)
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, header[i], err)
			}
			*fields[i](&m) = v
		}
		s.Sections = append(s.Sections, m)
	}
	return s, nil
}
