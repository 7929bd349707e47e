package tether

// DefaultSource is the source reported for values taken from a default directive.
const DefaultSource = "default"

// FieldProvenance describes where an accessor's value came from.
type FieldProvenance struct {
	Accessor   string `json:"accessor"` // method name, e.g. "Port"
	KeyPath    string `json:"key"`      // lookup key, e.g. "app.port"
	SourceName string `json:"source"`   // location, DefaultSource, or empty when absent
	Secret     bool   `json:"secret"`
}

// Provenance returns one entry per accessor, in accessor order.
func (c *Config) Provenance() []FieldProvenance {
	fields := make([]FieldProvenance, 0, len(c.contract.Accessors))
	for _, d := range c.contract.Accessors {
		fields = append(fields, FieldProvenance{
			Accessor:   d.Name,
			KeyPath:    d.Key,
			SourceName: c.sourceOf(d),
			Secret:     d.Secret,
		})
	}
	return fields
}

func (c *Config) sourceOf(d Descriptor) string {
	if c.props != nil {
		if _, ok := c.props.Lookup(d.Key); ok {
			return c.props.Origin(d.Key)
		}
	}
	if d.HasDefault {
		return DefaultSource
	}
	return ""
}
