package config

import "flag"

// Flags holds command-line overrides bound to a FlagSet.
type Flags struct {
	Config  *string
	Debug   *bool
	Format  *string
	Workers *int
	Output  *string
	Sphere  *bool
	LogFile *string
}

// BindFlags registers the shared topotool flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:  fs.String("config", "", "Path to config file"),
		Debug:   fs.Bool("debug", false, "Enable debug logging"),
		Format:  fs.String("format", "", "Input format: auto, wkt, geojson, ewkb"),
		Workers: fs.Int("workers", 0, "Files built concurrently"),
		Output:  fs.String("o", "", "Output format: text or yaml"),
		Sphere:  fs.Bool("sphere", false, "Compute bounding spheres"),
		LogFile: fs.String("log", "", "Write logs to this file"),
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	if f == nil || f.Config == nil {
		return ""
	}
	return *f.Config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug != nil && *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Format != nil && *f.Format != "" {
		cfg.Input.Format = *f.Format
	}
	if f.Workers != nil && *f.Workers > 0 {
		cfg.Build.Workers = *f.Workers
	}
	if f.Output != nil && *f.Output != "" {
		cfg.Output.Format = *f.Output
	}
	if f.Sphere != nil && *f.Sphere {
		cfg.Sphere.Enabled = true
	}
	if f.LogFile != nil && *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
}
