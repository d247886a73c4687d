package kafkaconf

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"kafkagen/internal/logger"
)

// Namespace-level keys.
const (
	keyBootstrapServers = "bootstrap.servers"
	keyPollingTimeout   = "polling.timeout"
	keyTopic            = "topic"
	keyConsumer         = "consumer"
	keyProducer         = "producer"
)

// Entity-level keys. Consumers use the deserializer pair, producers the
// serializer pair.
const (
	keyEnabled           = "enabled"
	keyKeyDeserializer   = "key.deserializer"
	keyValueDeserializer = "value.deserializer"
	keyGroupID           = "group.id"
	keyAutoOffsetReset   = "auto.offset.reset"
	keyKeySerializer     = "key.serializer"
	keyValueSerializer   = "value.serializer"
)

// Parse reads the namespace block out of a YAML file. Empty input and a
// missing namespace both yield the empty document. Malformed input yields a
// *ConfigParseError.
func Parse(data []byte, namespace string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ConfigParseError{Err: err}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return NewDocument(), nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		if isNull(top) {
			return NewDocument(), nil
		}
		return nil, &ConfigParseError{Err: errors.Newf("line %d: top level is not a mapping", top.Line)}
	}
	block := lookup(top, namespace)
	if block == nil || isNull(block) {
		return NewDocument(), nil
	}
	if block.Kind != yaml.MappingNode {
		return nil, &ConfigParseError{Err: errors.Newf("line %d: %q is not a mapping", block.Line, namespace)}
	}
	doc, err := parseBlock(block)
	if err != nil {
		return nil, &ConfigParseError{Err: err}
	}
	return doc, nil
}

// Load is the forgiving form of Parse: a parse failure is logged and the
// empty document returned.
func Load(data []byte, namespace string) *Document {
	doc, err := Parse(data, namespace)
	if err != nil {
		logger.Logger.Warnw("unreadable config, starting from empty",
			logger.FieldNamespace, namespace,
			logger.FieldError, err)
		return NewDocument()
	}
	return doc
}

// LoadFile reads path and returns its document together with the raw file
// text. A missing, unreadable or corrupt file yields the empty document; the
// returned text is nil when the file could not be read.
func LoadFile(path, namespace string) (*Document, []byte) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Logger.Debugw("config file absent", logger.FieldFile, path)
		} else {
			logger.Logger.Warnw("cannot read config file",
				logger.FieldFile, path,
				logger.FieldError, err)
		}
		return NewDocument(), nil
	}
	doc, err := Parse(data, namespace)
	if err != nil {
		var pe *ConfigParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		logger.Logger.Warnw("unreadable config, starting from empty",
			logger.FieldFile, path,
			logger.FieldNamespace, namespace,
			logger.FieldError, err)
		return NewDocument(), data
	}
	return doc, data
}

func parseBlock(block *yaml.Node) (*Document, error) {
	doc := NewDocument()
	for i := 0; i+1 < len(block.Content); i += 2 {
		k, v := block.Content[i], block.Content[i+1]
		switch unbracket(k.Value) {
		case keyBootstrapServers:
			if isNull(v) {
				continue
			}
			s, err := scalar(v, keyBootstrapServers)
			if err != nil {
				return nil, err
			}
			doc.BootstrapServers = s
		case keyPollingTimeout:
			if isNull(v) {
				continue
			}
			var n int
			if err := v.Decode(&n); err != nil {
				return nil, errors.Wrapf(err, "line %d: %s", v.Line, keyPollingTimeout)
			}
			doc.PollingTimeoutMs = &n
		case keyTopic:
			if err := eachPair(v, keyTopic, func(key string, val *yaml.Node) error {
				if isNull(val) {
					return nil
				}
				s, err := scalar(val, keyTopic+"."+key)
				if err != nil {
					return err
				}
				doc.Topics.Set(key, s)
				return nil
			}); err != nil {
				return nil, err
			}
		case keyConsumer:
			if err := eachPair(v, keyConsumer, func(key string, val *yaml.Node) error {
				s, err := parseConsumer(val)
				if err != nil {
					return errors.Wrapf(err, "consumer %q", key)
				}
				doc.Consumers.Set(key, s)
				return nil
			}); err != nil {
				return nil, err
			}
		case keyProducer:
			if err := eachPair(v, keyProducer, func(key string, val *yaml.Node) error {
				s, err := parseProducer(val)
				if err != nil {
					return errors.Wrapf(err, "producer %q", key)
				}
				doc.Producers.Set(key, s)
				return nil
			}); err != nil {
				return nil, err
			}
		default:
			if isNull(v) {
				continue
			}
			doc.Extra = append(doc.Extra, k, v)
		}
	}
	return doc, nil
}

func parseConsumer(n *yaml.Node) (ConsumerSettings, error) {
	var s ConsumerSettings
	err := eachEntry(n, func(k, v *yaml.Node) error {
		var err error
		switch unbracket(k.Value) {
		case keyEnabled:
			err = v.Decode(&s.Enabled)
		case keyKeyDeserializer:
			s.KeyCodec, err = scalar(v, keyKeyDeserializer)
		case keyValueDeserializer:
			s.ValueCodec, err = scalar(v, keyValueDeserializer)
		case keyGroupID:
			s.GroupID, err = scalar(v, keyGroupID)
		case keyAutoOffsetReset:
			var raw string
			if raw, err = scalar(v, keyAutoOffsetReset); err == nil {
				s.OffsetReset, err = ParseOffsetReset(raw)
			}
		default:
			s.Extra = append(s.Extra, k, v)
		}
		return err
	})
	return s, err
}

func parseProducer(n *yaml.Node) (ProducerSettings, error) {
	var s ProducerSettings
	err := eachEntry(n, func(k, v *yaml.Node) error {
		var err error
		switch unbracket(k.Value) {
		case keyEnabled:
			err = v.Decode(&s.Enabled)
		case keyKeySerializer:
			s.KeyCodec, err = scalar(v, keyKeySerializer)
		case keyValueSerializer:
			s.ValueCodec, err = scalar(v, keyValueSerializer)
		default:
			s.Extra = append(s.Extra, k, v)
		}
		return err
	})
	return s, err
}

// eachPair walks a mapping of scalar keys. A null value is an empty mapping.
func eachPair(n *yaml.Node, what string, fn func(key string, val *yaml.Node) error) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return errors.Newf("line %d: %s is not a mapping", n.Line, what)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(unbracket(n.Content[i].Value), n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// eachEntry walks an entity entry. A null entry carries no settings.
func eachEntry(n *yaml.Node, fn func(k, v *yaml.Node) error) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return errors.Newf("line %d: entry is not a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if isNull(v) {
			continue
		}
		if err := fn(k, v); err != nil {
			return errors.Wrapf(err, "line %d: %s", v.Line, k.Value)
		}
	}
	return nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func scalar(n *yaml.Node, what string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", errors.Newf("line %d: %s is not a scalar", n.Line, what)
	}
	return n.Value, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// unbracket strips the [..] quoting used for dotted map keys.
func unbracket(k string) string {
	if strings.HasPrefix(k, "[") && strings.HasSuffix(k, "]") {
		return k[1 : len(k)-1]
	}
	return k
}
