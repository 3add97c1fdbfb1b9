package config

// Diff describes what changed between two configs. Only the log level is
// applied without a restart; everything else is reported so the operator
// knows a restart is needed.
type Diff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// ProviderChanged is true when any provider field differs. Provider
	// swaps require a restart.
	ProviderChanged bool

	// StorageChanged is true when the storage DSN differs. Requires a restart.
	StorageChanged bool

	// ContextChanged is true when the context seed or history limit differs.
	// Requires a restart.
	ContextChanged bool
}

// Any reports whether the diff contains any change at all.
func (d Diff) Any() bool {
	return d.LogLevelChanged || d.ProviderChanged || d.StorageChanged || d.ContextChanged
}

// Compare returns what changed between old and new.
func Compare(old, new *Config) Diff {
	d := Diff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Provider.Name != new.Provider.Name ||
		old.Provider.APIKey != new.Provider.APIKey ||
		old.Provider.BaseURL != new.Provider.BaseURL ||
		old.Provider.Model != new.Provider.Model ||
		old.Provider.MaxOutputTokens != new.Provider.MaxOutputTokens ||
		!equalTemperature(old.Provider.Temperature, new.Provider.Temperature) {
		d.ProviderChanged = true
	}

	if old.Storage.PostgresDSN != new.Storage.PostgresDSN {
		d.StorageChanged = true
	}

	if old.Context != new.Context {
		d.ContextChanged = true
	}

	return d
}

func equalTemperature(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
