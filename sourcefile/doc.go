// Package sourcefile loads configuration documents from the filesystem and
// from embedded resources.
//
// New serves `file:` locations, NewClasspath serves `classpath:` locations
// over an fs.FS such as an embed.FS. The format follows the extension
// (.properties, .toml, .yaml/.yml, .json, .ini, .hcl, .env); a URI fragment
// names the charset of the document (default UTF-8).
//
// Example:
//
//	agg := tether.NewAggregator().
//	    WithLoader(sourcefile.New(sourcefile.Options{})).
//	    WithSource("file:./config.toml#ISO-8859-1")
package sourcefile
