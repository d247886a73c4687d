package yamlblock

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkagen/internal/kafkaconf"
)

func sampleDoc(t *testing.T) *kafkaconf.Document {
	t.Helper()
	timeout := 10000
	doc := kafkaconf.NewDocument()
	doc.BootstrapServers = "localhost:9092"
	doc.PollingTimeoutMs = &timeout
	doc.Topics.Set("foo", "queuing.myapp.foo")
	doc.Consumers.Set("foo", kafkaconf.ConsumerSettings{
		Enabled:     true,
		KeyCodec:    "org.apache.kafka.common.serialization.StringDeserializer",
		ValueCodec:  "com.mycompany.myapp.service.kafka.deserializer.FooDeserializer",
		GroupID:     "myapp",
		OffsetReset: kafkaconf.OffsetEarliest,
	})
	doc.Producers.Set("foo", kafkaconf.ProducerSettings{
		Enabled:    true,
		KeyCodec:   "org.apache.kafka.common.serialization.StringSerializer",
		ValueCodec: "com.mycompany.myapp.service.kafka.serializer.FooSerializer",
	})
	return doc
}

func TestRenderShape(t *testing.T) {
	out, err := Render("kafka", sampleDoc(t))
	require.NoError(t, err)

	want := `kafka:
  bootstrap.servers: localhost:9092
  polling.timeout: 10000
  topic:
    foo: queuing.myapp.foo
  consumer:
    foo:
      enabled: true
      '[key.deserializer]': org.apache.kafka.common.serialization.StringDeserializer
      '[value.deserializer]': com.mycompany.myapp.service.kafka.deserializer.FooDeserializer
      '[group.id]': myapp
      '[auto.offset.reset]': earliest
  producer:
    foo:
      enabled: true
      '[key.serializer]': org.apache.kafka.common.serialization.StringSerializer
      '[value.serializer]': com.mycompany.myapp.service.kafka.serializer.FooSerializer
`
	assert.Equal(t, want, string(out))
}

// topLevelKeys returns the keys indented exactly one level under the
// namespace, in order.
func topLevelKeys(out []byte) []string {
	var keys []string
	for _, l := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(l, "  ") && !strings.HasPrefix(l, "   ") {
			k, _, _ := strings.Cut(strings.TrimSpace(l), ":")
			keys = append(keys, k)
		}
	}
	return keys
}

func TestRenderOrderIsFixed(t *testing.T) {
	// Build the document in reverse order; rendering must not care.
	doc := kafkaconf.NewDocument()
	doc.Producers.Set("bar", kafkaconf.ProducerSettings{Enabled: true})
	doc.Consumers.Set("bar", kafkaconf.ConsumerSettings{Enabled: true})
	doc.Topics.Set("bar", "queuing.myapp.bar")
	timeout := 500
	doc.PollingTimeoutMs = &timeout
	doc.BootstrapServers = "b:9092"

	out, err := Render("kafka", doc)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"bootstrap.servers", "polling.timeout", "topic", "consumer", "producer"},
		topLevelKeys(out))
}

func TestRenderOmitsAbsentValues(t *testing.T) {
	doc := kafkaconf.NewDocument()
	doc.Producers.Set("foo", kafkaconf.ProducerSettings{Enabled: false})

	out, err := Render("kafka", doc)
	require.NoError(t, err)
	assert.Equal(t, "kafka:\n  producer:\n    foo:\n      enabled: false\n", string(out))
	assert.NotContains(t, string(out), "null")
}

func TestRenderEmptyDocument(t *testing.T) {
	out, err := Render("kafka", kafkaconf.NewDocument())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "null")

	doc, err := kafkaconf.Parse(out, "kafka")
	require.NoError(t, err)
	assert.True(t, doc.IsEmpty())
}

func TestRenderEntityOrderPreserved(t *testing.T) {
	doc := kafkaconf.NewDocument()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		doc.Consumers.Set(k, kafkaconf.ConsumerSettings{Enabled: true})
	}
	out, err := Render("kafka", doc)
	require.NoError(t, err)

	back, err := kafkaconf.Parse(out, "kafka")
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, back.ConsumerKeys())
}

func TestRenderIdempotent(t *testing.T) {
	base, err := kafkaconf.Parse([]byte(`kafka:
  bootstrap.servers: ${KAFKA_BOOTSTRAP_SERVERS:kafka.local:9092}
  topic:
    orders: orders-v1
  consumer:
    bar:
      enabled: false
      '[max.poll.records]': 50
  admin:
    retries: 3
`), "kafka")
	require.NoError(t, err)

	timeout := 10000
	v, err := kafkaconf.Merge(base, []kafkaconf.Instruction{{
		EntityName: "Foo",
		EntityKey:  "foo",
		Component:  kafkaconf.Producer,
		Settings: kafkaconf.ProducerSettings{
			KeyCodec:   "org.apache.kafka.common.serialization.StringSerializer",
			ValueCodec: "com.mycompany.myapp.service.kafka.serializer.FooSerializer",
		},
	}}, kafkaconf.Globals{
		BootstrapServers: "localhost:9092",
		PollingTimeoutMs: &timeout,
		Topics:           []kafkaconf.Topic{{Key: "orders", Value: "orders-v2"}},
	})
	require.NoError(t, err)

	for name, doc := range map[string]*kafkaconf.Document{"main": v.Main, "test": v.Test} {
		t.Run(name, func(t *testing.T) {
			first, err := Render("kafka", doc)
			require.NoError(t, err)
			reloaded, err := kafkaconf.Parse(first, "kafka")
			require.NoError(t, err)
			second, err := Render("kafka", reloaded)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))

			assert.Contains(t, string(first), "${KAFKA_BOOTSTRAP_SERVERS:kafka.local:9092}")
			assert.Contains(t, string(first), "'[max.poll.records]': 50")
			assert.Contains(t, string(first), "  admin:\n    retries: 3\n")
			assert.NotContains(t, string(first), "null")
		})
	}
}

func TestUnquoteLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "placeholder with dotted host",
			line: "  bootstrap.servers: '${KAFKA_BOOTSTRAP_SERVERS:kafka.local:9092}'\n",
			want: "  bootstrap.servers: ${KAFKA_BOOTSTRAP_SERVERS:kafka.local:9092}\n",
		},
		{
			name: "double quoted",
			line: `  url: "jdbc:postgresql.local"` + "\n",
			want: "  url: jdbc:postgresql.local\n",
		},
		{
			name: "no colon",
			line: "  foo: 'a.b.c'\n",
			want: "  foo: 'a.b.c'\n",
		},
		{
			name: "no dot after colon",
			line: "  host: 'localhost:9092'\n",
			want: "  host: 'localhost:9092'\n",
		},
		{
			name: "contains space",
			line: "  msg: 'a: b.c'\n",
			want: "  msg: 'a: b.c'\n",
		},
		{
			name: "leading indicator",
			line: "  v: '*x:a.b'\n",
			want: "  v: '*x:a.b'\n",
		},
		{
			name: "dot only at the end",
			line: "  v: 'x:ab.'\n",
			want: "  v: 'x:ab.'\n",
		},
		{
			name: "numbers only after colon",
			line: "  v: '1:2.5'\n",
			want: "  v: '1:2.5'\n",
		},
		{
			name: "bracket key is untouched",
			line: "      '[group.id]': myapp\n",
			want: "      '[group.id]': myapp\n",
		},
		{
			name: "no newline",
			line: "  s: 'a:b.c'",
			want: "  s: a:b.c",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unquoteLine(tt.line))
		})
	}
}

func TestRenderDropsNullValues(t *testing.T) {
	doc, err := kafkaconf.Parse([]byte(`kafka:
  custom:
  other: ~
  kept: value
  topic:
    orders:
    foo: queuing.myapp.foo
`), "kafka")
	require.NoError(t, err)

	out, err := Render("kafka", doc)
	require.NoError(t, err)
	assert.Equal(t, "kafka:\n  topic:\n    foo: queuing.myapp.foo\n  kept: value\n", string(out))
	assert.NotContains(t, string(out), "~")
	assert.NotContains(t, string(out), `""`)
}
