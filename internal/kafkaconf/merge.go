package kafkaconf

import (
	"github.com/cockroachdb/errors"
)

// Instruction asks the merger to register one component for one entity.
type Instruction struct {
	EntityName string
	EntityKey  string
	Component  Component
	// Settings must be ConsumerSettings for Consumer and ProducerSettings for
	// Producer. Its Enabled flag is ignored; Merge sets it per variant.
	Settings Settings
}

// Topic is one topic override.
type Topic struct {
	Key   string
	Value string
}

// Globals are the session-wide settings applied by Merge.
type Globals struct {
	// BootstrapServers is only applied when the document has none.
	BootstrapServers string
	// PollingTimeoutMs overwrites the document value when non-nil.
	PollingTimeoutMs *int
	// Topics are upserted in order.
	Topics []Topic
}

// Variants are the two documents produced from one instruction set: Main
// enables every newly added component, Test disables them.
type Variants struct {
	Main *Document
	Test *Document
}

// Merge applies instructions and globals to doc. doc is not modified.
func Merge(doc *Document, instructions []Instruction, g Globals) (Variants, error) {
	base := doc.Clone()

	if base.BootstrapServers == "" && g.BootstrapServers != "" {
		base.BootstrapServers = g.BootstrapServers
	}
	if g.PollingTimeoutMs != nil {
		v := *g.PollingTimeoutMs
		base.PollingTimeoutMs = &v
	}
	for _, t := range g.Topics {
		if t.Key == "" {
			continue
		}
		// Set replaces in place when the key exists.
		base.Topics.Set(t.Key, t.Value)
	}

	main, test := base, base.Clone()
	for _, ins := range instructions {
		if err := validate(ins); err != nil {
			return Variants{}, err
		}
		if main.Has(ins.EntityKey, ins.Component) {
			return Variants{}, errors.WithHint(
				&DuplicateComponentError{EntityKey: ins.EntityKey, Component: ins.Component},
				"existing components cannot be regenerated; remove the entry from the config first")
		}
		add(main, ins, true)
		add(test, ins, false)
	}
	return Variants{Main: main, Test: test}, nil
}

func validate(ins Instruction) error {
	if ins.EntityKey == "" {
		return errors.Newf("instruction for %s has no entity key", ins.Component)
	}
	if ins.Settings == nil {
		return errors.Newf("instruction %s/%s has no settings", ins.EntityKey, ins.Component)
	}
	if ins.Settings.Component() != ins.Component {
		return errors.Newf("instruction %s/%s carries %s settings",
			ins.EntityKey, ins.Component, ins.Settings.Component())
	}
	return nil
}

func add(doc *Document, ins Instruction, enabled bool) {
	switch s := ins.Settings.(type) {
	case ConsumerSettings:
		s.Enabled = enabled
		if s.OffsetReset == "" {
			s.OffsetReset = OffsetEarliest
		}
		doc.Consumers.Set(ins.EntityKey, s)
	case ProducerSettings:
		s.Enabled = enabled
		doc.Producers.Set(ins.EntityKey, s)
	}
}
