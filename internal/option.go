package internal

// application collects everything Run and RunMCP need before they start:
// the loaded configuration and the build version for startup logs.
type application struct {
	config  *Config
	version string
}

// Option configures the application assembled by Run or RunMCP.
type Option func(*application)

// WithConfig supplies the loaded configuration. Required.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion records the build version reported at startup.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
