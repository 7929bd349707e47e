// Package sourceenv serves the process environment and the process-level
// system properties as configuration sources.
//
// New accepts `system:env`. By default keys are the variable names as-is;
// with Options.Normalize they become lowercase dot paths (FOO__BAR → foo.bar).
// NewProperties accepts `system:properties` and returns a snapshot of a
// tether.SystemProperties registry.
//
// Example:
//
//	agg := tether.NewAggregator().
//	    WithLoader(sourceenv.New(sourceenv.Options{}), sourceenv.NewProperties(tether.System)).
//	    WithSource("system:properties").
//	    WithSource("system:env")
package sourceenv
