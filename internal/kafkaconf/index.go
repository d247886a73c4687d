package kafkaconf

// Index is a read-only view of which entities already hold which component.
// Derived from a Document on demand and never persisted.
type Index struct {
	consumers map[string]struct{}
	producers map[string]struct{}
}

// IndexOf builds the index of doc.
func IndexOf(doc *Document) Index {
	ix := Index{
		consumers: make(map[string]struct{}, doc.Consumers.Len()),
		producers: make(map[string]struct{}, doc.Producers.Len()),
	}
	for p := doc.Consumers.Oldest(); p != nil; p = p.Next() {
		ix.consumers[p.Key] = struct{}{}
	}
	for p := doc.Producers.Oldest(); p != nil; p = p.Next() {
		ix.producers[p.Key] = struct{}{}
	}
	return ix
}

// Has reports whether entityKey holds component c.
func (ix Index) Has(entityKey string, c Component) bool {
	switch c {
	case Consumer:
		_, ok := ix.consumers[entityKey]
		return ok
	case Producer:
		_, ok := ix.producers[entityKey]
		return ok
	}
	return false
}

// Available returns the components entityKey does not hold yet, in
// Components order.
func (ix Index) Available(entityKey string) []Component {
	var out []Component
	for _, c := range Components {
		if !ix.Has(entityKey, c) {
			out = append(out, c)
		}
	}
	return out
}

// Complete reports whether entityKey holds every component.
func (ix Index) Complete(entityKey string) bool {
	return len(ix.Available(entityKey)) == 0
}

// With returns a copy of ix that also records component c for entityKey.
func (ix Index) With(entityKey string, c Component) Index {
	out := Index{
		consumers: copySet(ix.consumers),
		producers: copySet(ix.producers),
	}
	switch c {
	case Consumer:
		out.consumers[entityKey] = struct{}{}
	case Producer:
		out.producers[entityKey] = struct{}{}
	}
	return out
}

// Len returns the number of registered components.
func (ix Index) Len() int {
	return len(ix.consumers) + len(ix.producers)
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in)+1)
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
