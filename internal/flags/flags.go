// Package flags gates optional editor features behind config switches.
// A Registry is read-only once built and treats unknown names as disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/redraft/internal/log"
)

const (
	// FlagMacroRecording lets ctrl+r record typed edits into a macro in the
	// interactive editor.
	FlagMacroRecording = "macro-recording"

	// FlagLogTail shows the most recent debug log line under the status bar.
	// Only has an effect when debug logging is on.
	FlagLogTail = "log-tail"
)

// Defaults returns the built-in flag values.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagMacroRecording: true,
		FlagLogTail:        false,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. The map is copied.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: maps.Clone(flags)}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "enabled", r.EnabledNames())
	return r
}

// Enabled reports whether name is switched on. Unknown names and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, ok := r.flags[name]
	if !ok {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
	}
	return value
}

// EnabledNames returns the sorted names of enabled flags.
func (r *Registry) EnabledNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	for name, on := range r.flags {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
