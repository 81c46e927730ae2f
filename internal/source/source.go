// Package source reads polygon features from files and exposes them as
// topology ring sources.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/Faultbox/forge-topology/pkg/topology"
)

// Source errors.
var (
	ErrUnknownFormat = errors.New("unknown feature format")
	ErrNoGeometries  = errors.New("no geometries found")
)

// Format identifies a feature file encoding.
type Format string

// Supported formats.
const (
	FormatAuto    Format = "auto"
	FormatWKT     Format = "wkt"
	FormatGeoJSON Format = "geojson"
	FormatEWKB    Format = "ewkb"
)

// ParseFormat validates a format name. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatWKT, FormatGeoJSON, FormatEWKB:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Detect picks a format from the file extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wkt":
		return FormatWKT, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".ewkb", ".hex":
		return FormatEWKB, nil
	default:
		return "", fmt.Errorf("%w: cannot detect format of %s", ErrUnknownFormat, path)
	}
}

// Load reads the file at path and returns one ring source per polygon.
func Load(path string, format Format) ([]topology.RingSource, error) {
	if format == FormatAuto || format == "" {
		f, err := Detect(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sources, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sources, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) ([]topology.RingSource, error) {
	var (
		geoms []geom.T
		err   error
	)
	switch format {
	case FormatWKT:
		geoms, err = eachLine(data, wkt.Unmarshal)
	case FormatEWKB:
		geoms, err = eachLine(data, ewkbhex.Decode)
	case FormatGeoJSON:
		geoms, err = decodeGeoJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	var sources []topology.RingSource
	for i, g := range geoms {
		s, err := topology.SourcesFromGeometry(g)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		sources = append(sources, s...)
	}
	if len(sources) == 0 {
		return nil, ErrNoGeometries
	}
	return sources, nil
}

// eachLine decodes one geometry per non-empty line. Lines starting with '#'
// are comments.
func eachLine(data []byte, decode func(string) (geom.T, error)) ([]geom.T, error) {
	var geoms []geom.T
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		g, err := decode(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		geoms = append(geoms, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return geoms, nil
}

// decodeGeoJSON accepts a FeatureCollection, a Feature or a bare geometry.
func decodeGeoJSON(data []byte) ([]geom.T, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
		geoms := make([]geom.T, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f.Geometry != nil {
				geoms = append(geoms, f.Geometry)
			}
		}
		return geoms, nil
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		if f.Geometry == nil {
			return nil, nil
		}
		return []geom.T{f.Geometry}, nil
	case "":
		return nil, errors.New("geojson: missing type")
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		return []geom.T{g}, nil
	}
}
