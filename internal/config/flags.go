package config

import "flag"

// Flags holds the command-line overrides registered on a flag set.
type Flags struct {
	fs *flag.FlagSet

	path      *string
	debug     *bool
	seed      *int64
	radius    *int
	mesher    *string
	generator *string
	lighting  *bool
	trees     *bool
	dumpDir   *string
}

// RegisterFlags adds the config overrides to fs. Parse fs before Load.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:        fs,
		path:      fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		seed:      fs.Int64("seed", 0, "World seed"),
		radius:    fs.Int("radius", 0, "Chunk load radius"),
		mesher:    fs.String("mesher", "", "Mesher: greedy or naive"),
		generator: fs.String("generator", "", "Terrain: noise, flat or density"),
		lighting:  fs.Bool("lighting", true, "Compute light when meshing"),
		trees:     fs.Bool("trees", true, "Plant trees after generation"),
		dumpDir:   fs.String("dump", "", "Directory for PNG light and height maps"),
	}
}

// ConfigPath returns the -config value.
func (f *Flags) ConfigPath() string {
	return *f.path
}

// apply copies every flag given on the command line into cfg.
func (f *Flags) apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if *f.debug {
				cfg.Logging.Level = "debug"
			}
		case "seed":
			cfg.World.Seed = *f.seed
		case "radius":
			cfg.ClampLoadRadius(*f.radius)
		case "mesher":
			cfg.Meshing.Mode = *f.mesher
		case "generator":
			cfg.World.Generator = *f.generator
		case "lighting":
			cfg.Lighting.Enabled = *f.lighting
		case "trees":
			cfg.World.Trees = *f.trees
		case "dump":
			cfg.Debug.DumpDir = *f.dumpDir
		}
	})
}
