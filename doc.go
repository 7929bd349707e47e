// Package tether binds configuration accessor contracts to merged key/value sources.
//
// A contract is an interface whose exported methods are accessors. Describe
// validates it and decides, for every accessor, which resolution engine
// operation produces its value. An Aggregator loads source locations through
// pluggable Loaders and merges them into Properties; Bind evaluates the
// contract against them.
//
// Quick Start:
//
//	type AppConfig interface {
//	    Host() string
//	    Port() int
//	    Tags() tether.Set[string]
//	    Timeout() tether.Optional[time.Duration]
//	}
//
//	agg := tether.NewAggregator().
//	    WithLoader(standard.Loaders(standard.Options{})...).
//	    WithSource("file:~/app.properties").
//	    WithSource("system:env")
//
//	cfg, err := tether.New[AppConfig](ctx, agg,
//	    tether.WithPrefix("app"),
//	    tether.WithTag("Port", "default:8080"),
//	)
//	port := tether.Value[int](cfg, "Port")
//
// Accessor shapes: T, Optional[T], []T, Set[T], SortedSet[T], map[K]V,
// SortedMap[K,V] and Optional of each container.
// Tag directives: key:path, default:val, split:regex, noprefix, converter:name, secret.
//
// The Get* functions form the resolution engine and can be called directly
// with typed converters such as Int or Duration.
package tether
