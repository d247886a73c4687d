// Package kafkaconf models the broker block of an application config file
// and implements loading, indexing and merging of that block.
//
// A Document is treated as a value: Merge never mutates its input and every
// exported operation that changes a document returns a new one.
package kafkaconf

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// DefaultNamespace is the reserved top-level key the block lives under.
const DefaultNamespace = "kafka"

// Component is one generation unit tied to an entity.
type Component int

const (
	Consumer Component = iota
	Producer
)

// Components lists every component in rendering and prompting order.
var Components = []Component{Consumer, Producer}

func (c Component) String() string {
	switch c {
	case Consumer:
		return "consumer"
	case Producer:
		return "producer"
	default:
		return fmt.Sprintf("component(%d)", int(c))
	}
}

// ParseComponent is the inverse of Component.String.
func ParseComponent(s string) (Component, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "consumer":
		return Consumer, nil
	case "producer":
		return Producer, nil
	}
	return 0, errors.Newf("unknown component %q", s)
}

// OffsetReset is the consumer auto.offset.reset policy.
type OffsetReset string

const (
	OffsetEarliest OffsetReset = "earliest"
	OffsetLatest   OffsetReset = "latest"
	OffsetNone     OffsetReset = "none"
)

// OffsetResets lists the valid policies, default first.
var OffsetResets = []OffsetReset{OffsetEarliest, OffsetLatest, OffsetNone}

// ParseOffsetReset validates s as an OffsetReset.
func ParseOffsetReset(s string) (OffsetReset, error) {
	for _, o := range OffsetResets {
		if string(o) == strings.ToLower(strings.TrimSpace(s)) {
			return o, nil
		}
	}
	return "", errors.Newf("unknown offset reset policy %q (want earliest, latest or none)", s)
}

// Settings is implemented by ConsumerSettings and ProducerSettings.
type Settings interface {
	Component() Component
}

// ConsumerSettings is one entry of the consumer map.
type ConsumerSettings struct {
	Enabled     bool
	KeyCodec    string
	ValueCodec  string
	GroupID     string
	OffsetReset OffsetReset
	// Extra holds unrecognized key/value node pairs, kept verbatim.
	Extra []*yaml.Node
}

func (ConsumerSettings) Component() Component { return Consumer }

// ProducerSettings is one entry of the producer map.
type ProducerSettings struct {
	Enabled    bool
	KeyCodec   string
	ValueCodec string
	Extra      []*yaml.Node
}

func (ProducerSettings) Component() Component { return Producer }

// Document is the parsed content of the namespace block.
type Document struct {
	// BootstrapServers is empty when unset.
	BootstrapServers string
	PollingTimeoutMs *int
	Topics           *orderedmap.OrderedMap[string, string]
	Consumers        *orderedmap.OrderedMap[string, ConsumerSettings]
	Producers        *orderedmap.OrderedMap[string, ProducerSettings]
	// Extra holds unrecognized namespace-level key/value node pairs.
	Extra []*yaml.Node
}

// NewDocument returns the empty default document.
func NewDocument() *Document {
	return &Document{
		Topics:    orderedmap.New[string, string](),
		Consumers: orderedmap.New[string, ConsumerSettings](),
		Producers: orderedmap.New[string, ProducerSettings](),
	}
}

// Clone returns a deep copy of d. Extra nodes are shared; nothing in this
// package modifies them.
func (d *Document) Clone() *Document {
	out := NewDocument()
	out.BootstrapServers = d.BootstrapServers
	if d.PollingTimeoutMs != nil {
		v := *d.PollingTimeoutMs
		out.PollingTimeoutMs = &v
	}
	for p := d.Topics.Oldest(); p != nil; p = p.Next() {
		out.Topics.Set(p.Key, p.Value)
	}
	for p := d.Consumers.Oldest(); p != nil; p = p.Next() {
		s := p.Value
		s.Extra = append([]*yaml.Node(nil), s.Extra...)
		out.Consumers.Set(p.Key, s)
	}
	for p := d.Producers.Oldest(); p != nil; p = p.Next() {
		s := p.Value
		s.Extra = append([]*yaml.Node(nil), s.Extra...)
		out.Producers.Set(p.Key, s)
	}
	out.Extra = append([]*yaml.Node(nil), d.Extra...)
	return out
}

// IsEmpty reports whether d carries no settings at all.
func (d *Document) IsEmpty() bool {
	return d.BootstrapServers == "" && d.PollingTimeoutMs == nil &&
		d.Topics.Len() == 0 && d.Consumers.Len() == 0 && d.Producers.Len() == 0 &&
		len(d.Extra) == 0
}

// Has reports whether the entity already holds component c.
func (d *Document) Has(entityKey string, c Component) bool {
	switch c {
	case Consumer:
		_, ok := d.Consumers.Get(entityKey)
		return ok
	case Producer:
		_, ok := d.Producers.Get(entityKey)
		return ok
	}
	return false
}

// Enabled returns the enabled flag of an existing component.
func (d *Document) Enabled(entityKey string, c Component) (enabled, ok bool) {
	switch c {
	case Consumer:
		s, found := d.Consumers.Get(entityKey)
		return s.Enabled, found
	case Producer:
		s, found := d.Producers.Get(entityKey)
		return s.Enabled, found
	}
	return false, false
}

// TopicKeys returns the topic keys in document order.
func (d *Document) TopicKeys() []string {
	keys := make([]string, 0, d.Topics.Len())
	for p := d.Topics.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// ConsumerKeys returns the consumer entity keys in document order.
func (d *Document) ConsumerKeys() []string {
	keys := make([]string, 0, d.Consumers.Len())
	for p := d.Consumers.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// ProducerKeys returns the producer entity keys in document order.
func (d *Document) ProducerKeys() []string {
	keys := make([]string, 0, d.Producers.Len())
	for p := d.Producers.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}
