package pipeline

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// FileReport is the serialisable summary of one Result.
type FileReport struct {
	Path      string        `yaml:"path"`
	Features  int           `yaml:"features"`
	Vertices  int           `yaml:"vertices"`
	Indices   int           `yaml:"indices"`
	Triangles int           `yaml:"triangles"`
	Extents   ExtentsReport `yaml:"extents"`
	Sphere    *SphereReport `yaml:"sphere,omitempty"`
}

// ExtentsReport mirrors topology.Extents.
type ExtentsReport struct {
	MinLon    float64 `yaml:"min_lon"`
	MinLat    float64 `yaml:"min_lat"`
	MinHeight float64 `yaml:"min_height"`
	MaxLon    float64 `yaml:"max_lon"`
	MaxLat    float64 `yaml:"max_lat"`
	MaxHeight float64 `yaml:"max_height"`
}

// SphereReport mirrors bsphere.Sphere.
type SphereReport struct {
	Center [3]float64 `yaml:"center,flow"`
	Radius float64    `yaml:"radius"`
}

// Summarize converts results into reports.
func Summarize(results []Result) []FileReport {
	reports := make([]FileReport, len(results))
	for i, res := range results {
		t := res.Topology
		e := t.Extents
		reports[i] = FileReport{
			Path:      res.Path,
			Features:  res.Features,
			Vertices:  t.VertexCount(),
			Indices:   len(t.Indices),
			Triangles: t.TriangleCount(),
			Extents: ExtentsReport{
				MinLon: e.MinLon, MinLat: e.MinLat, MinHeight: e.MinHeight,
				MaxLon: e.MaxLon, MaxLat: e.MaxLat, MaxHeight: e.MaxHeight,
			},
		}
		if s := res.Sphere; s != nil {
			reports[i].Sphere = &SphereReport{
				Center: [3]float64{s.Center.X, s.Center.Y, s.Center.Z},
				Radius: s.Radius,
			}
		}
	}
	return reports
}

// WriteReport writes results as "text" or "yaml".
func WriteReport(w io.Writer, results []Result, format string) error {
	reports := Summarize(results)
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "File:      %s\n", r.Path)
		fmt.Fprintf(w, "Features:  %d\n", r.Features)
		fmt.Fprintf(w, "Vertices:  %d\n", r.Vertices)
		fmt.Fprintf(w, "Indices:   %d\n", r.Indices)
		fmt.Fprintf(w, "Triangles: %d\n", r.Triangles)
		fmt.Fprintf(w, "Lon:       %v .. %v\n", r.Extents.MinLon, r.Extents.MaxLon)
		fmt.Fprintf(w, "Lat:       %v .. %v\n", r.Extents.MinLat, r.Extents.MaxLat)
		fmt.Fprintf(w, "Height:    %v .. %v\n", r.Extents.MinHeight, r.Extents.MaxHeight)
		if s := r.Sphere; s != nil {
			fmt.Fprintf(w, "Sphere:    center=(%.3f, %.3f, %.3f) radius=%.3f\n",
				s.Center[0], s.Center[1], s.Center[2], s.Radius)
		}
	}
	return nil
}
