// Package yamlblock renders the broker block of a config file and splices it
// back into the surrounding file text.
//
// Only the managed block is ever re-serialized. Everything outside it is
// carried over byte for byte.
package yamlblock

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"kafkagen/internal/kafkaconf"
)

// Render serializes doc as a single top-level mapping under namespace.
//
// Keys come out in fixed order: bootstrap.servers, polling.timeout, topic,
// consumer, producer, then any unrecognized keys in their original order.
// Absent values and empty maps are omitted rather than written as null.
func Render(namespace string, doc *kafkaconf.Document) ([]byte, error) {
	body := mapping()
	if doc.BootstrapServers != "" {
		put(body, "bootstrap.servers", str(doc.BootstrapServers))
	}
	if doc.PollingTimeoutMs != nil {
		put(body, "polling.timeout", integer(*doc.PollingTimeoutMs))
	}
	if doc.Topics.Len() > 0 {
		topics := mapping()
		for p := doc.Topics.Oldest(); p != nil; p = p.Next() {
			put(topics, p.Key, str(p.Value))
		}
		put(body, "topic", topics)
	}
	if doc.Consumers.Len() > 0 {
		consumers := mapping()
		for p := doc.Consumers.Oldest(); p != nil; p = p.Next() {
			put(consumers, p.Key, consumerNode(p.Value))
		}
		put(body, "consumer", consumers)
	}
	if doc.Producers.Len() > 0 {
		producers := mapping()
		for p := doc.Producers.Oldest(); p != nil; p = p.Next() {
			put(producers, p.Key, producerNode(p.Value))
		}
		put(body, "producer", producers)
	}
	body.Content = append(body.Content, doc.Extra...)

	root := mapping()
	put(root, namespace, body)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, errors.Wrapf(err, "render %s", namespace)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrapf(err, "render %s", namespace)
	}
	return unquoteDottedValues(buf.Bytes()), nil
}

func consumerNode(s kafkaconf.ConsumerSettings) *yaml.Node {
	n := mapping()
	put(n, "enabled", boolean(s.Enabled))
	putDotted(n, "key.deserializer", s.KeyCodec)
	putDotted(n, "value.deserializer", s.ValueCodec)
	putDotted(n, "group.id", s.GroupID)
	putDotted(n, "auto.offset.reset", string(s.OffsetReset))
	n.Content = append(n.Content, s.Extra...)
	return n
}

func producerNode(s kafkaconf.ProducerSettings) *yaml.Node {
	n := mapping()
	put(n, "enabled", boolean(s.Enabled))
	putDotted(n, "key.serializer", s.KeyCodec)
	putDotted(n, "value.serializer", s.ValueCodec)
	n.Content = append(n.Content, s.Extra...)
	return n
}

// putDotted adds a technical key in [bracket] form so the dots are not read
// as a property path. Empty values are skipped.
func putDotted(m *yaml.Node, key, value string) {
	if value == "" {
		return
	}
	put(m, "["+key+"]", str(value))
}

func put(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, str(key), value)
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func integer(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func boolean(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
}

// unquoteDottedValues strips the quotes the encoder puts around values such
// as '${KAFKA_BOOTSTRAP_SERVERS:kafka.local:9092}'. The bare form reads back
// as the same string.
func unquoteDottedValues(out []byte) []byte {
	lines := strings.SplitAfter(string(out), "\n")
	for i, line := range lines {
		lines[i] = unquoteLine(line)
	}
	return []byte(strings.Join(lines, ""))
}

func unquoteLine(line string) string {
	body := strings.TrimRight(line, "\n")
	eol := line[len(body):]
	if len(body) < 2 {
		return line
	}
	q := body[len(body)-1]
	if q != '\'' && q != '"' {
		return line
	}
	start := strings.LastIndex(body[:len(body)-1], ": "+string(q))
	if start < 0 {
		return line
	}
	inner := body[start+3 : len(body)-1]
	if strings.ContainsRune(inner, rune(q)) || !plainSafeDotted(inner) {
		return line
	}
	return body[:start+2] + inner + eol
}

// plainSafeDotted reports whether v holds a colon followed by dotted-key-like
// text and can be written as a plain scalar without changing its meaning.
func plainSafeDotted(v string) bool {
	if v == "" || strings.ContainsAny(v, " \t\\'\"#,[]") || strings.HasSuffix(v, ":") {
		return false
	}
	if strings.ContainsRune("-?:{}&*!|>%@`", rune(v[0])) {
		return false
	}
	colon := strings.IndexByte(v, ':')
	if colon < 0 {
		return false
	}
	rest := v[colon+1:]
	dot := strings.IndexByte(rest, '.')
	if dot <= 0 || dot == len(rest)-1 {
		return false
	}
	return strings.IndexFunc(rest, isLetter) >= 0
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}
