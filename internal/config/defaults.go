package config

const (
	defaultSidecarSuffix      = ".json"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMaxCollisionProbes = 100000
)

// defaultExcludedExtensions are export byproducts that never land in the
// destination tree: sidecar metadata, markup indexes, and archives.
var defaultExcludedExtensions = []string{".json", ".html", ".htm", ".zip", ".tgz"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Organize: Organize{
			Workers:            0,
			SidecarSuffix:      defaultSidecarSuffix,
			ExcludedExtensions: append([]string{}, defaultExcludedExtensions...),
			MaxCollisionProbes: defaultMaxCollisionProbes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
