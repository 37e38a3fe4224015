package gen

// Factory constructs a fresh backend instance for one generation pass.
type Factory func() Backend

// generators is the registry of available target backends.
var generators = make(map[string]Factory)

// Register makes a backend factory available under the target tag. Concrete
// backends register themselves in an init func; registering the same tag
// twice panics.
func Register(tag string, f Factory) {
	if f == nil {
		panic("gen: Register factory is nil")
	}
	if _, dup := generators[tag]; dup {
		panic("gen: Register called twice for " + tag)
	}
	generators[tag] = f
}

// Generators returns the registered backend factories, keyed by target tag.
func Generators() map[string]Factory {
	m := make(map[string]Factory, len(generators))
	for tag, f := range generators {
		m[tag] = f
	}
	return m
}
