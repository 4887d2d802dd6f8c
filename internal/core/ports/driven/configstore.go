package driven

// ConfigStore provides read access to the pipeline's tunable settings.
// Implementations handle persistence (e.g. TOML files) and type
// conversion; missing keys fall back to the caller's default.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or fallback when the key is
	// missing or not a string.
	GetString(key, fallback string) string

	// GetInt retrieves an integer value, or fallback.
	GetInt(key string, fallback int) int

	// GetFloat retrieves a float value, or fallback.
	GetFloat(key string, fallback float64) float64

	// GetBool retrieves a boolean value, or fallback.
	GetBool(key string, fallback bool) bool

	// GetStringSlice retrieves a string slice value, or nil.
	GetStringSlice(key string) []string

	// Path returns the configuration file path.
	Path() string
}
