package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagRadius     = flag.Float64("radius", 0, "Normalization target radius")
	flagRaw        = flag.Bool("raw", false, "Skip normalization")
	flagPolicy     = flag.String("policy", "", "Index policy: legacy, lenient or strict")
	flagTopology   = flag.String("topology", "", "Primitive topology recorded in the packed buffer")
	flagWatch      = flag.Bool("watch", false, "Reload the mesh when the file changes")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRadius > 0 {
		cfg.Pipeline.TargetRadius = float32(*flagRadius)
	}
	if *flagRaw {
		cfg.Pipeline.Normalize = false
	}
	if *flagPolicy != "" {
		cfg.Pipeline.IndexPolicy = *flagPolicy
	}
	if *flagTopology != "" {
		cfg.Pipeline.Topology = *flagTopology
	}
	if *flagWatch {
		cfg.Viewer.Watch = true
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}
