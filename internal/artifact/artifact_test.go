package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkagen/internal/kafkaconf"
	"kafkagen/internal/scaffold"
)

func project(dir string) *scaffold.Project {
	return &scaffold.Project{Dir: dir, BaseName: "myapp", PackageName: "com.mycompany.myapp"}
}

func instructions() []kafkaconf.Instruction {
	return []kafkaconf.Instruction{
		{EntityName: "OrderLine", EntityKey: "orderLine", Component: kafkaconf.Consumer, Settings: kafkaconf.ConsumerSettings{}},
		{EntityName: "Foo", EntityKey: "foo", Component: kafkaconf.Producer, Settings: kafkaconf.ProducerSettings{}},
	}
}

func paths(descs []Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Path
	}
	return out
}

func TestPlan(t *testing.T) {
	descs := Plan(project("/app"), instructions())
	base := "src/main/java/com/mycompany/myapp/"
	assert.Equal(t, []string{
		base + "config/KafkaProperties.java",
		base + "service/kafka/consumer/OrderLineConsumer.java",
		base + "service/kafka/deserializer/OrderLineDeserializer.java",
		base + "service/kafka/producer/FooProducer.java",
		base + "service/kafka/serializer/FooSerializer.java",
	}, paths(descs))

	for _, d := range descs {
		switch d.Kind {
		case KindConsumer, KindDeserializer:
			assert.Equal(t, "OrderLine", d.Data.EntityClass)
			assert.Equal(t, "order_line", d.Data.TopicKey)
		case KindProducer, KindSerializer:
			assert.Equal(t, "Foo", d.Data.EntityClass)
		case KindProperties:
			assert.Empty(t, d.Data.Entity)
		}
	}
}

func TestPlanEmpty(t *testing.T) {
	assert.Nil(t, Plan(project("/app"), nil))
}

func TestRenderEveryKind(t *testing.T) {
	for _, d := range Plan(project("/app"), instructions()) {
		t.Run(string(d.Kind), func(t *testing.T) {
			out, err := Render(d)
			require.NoError(t, err)
			s := string(out)
			assert.True(t, strings.HasPrefix(s, "package com.mycompany.myapp."), s)
			assert.NotContains(t, s, "<no value>")
			if d.Data.EntityClass != "" {
				assert.Contains(t, s, d.Data.EntityClass)
			}
		})
	}
}

func TestRenderConsumerCarriesKeys(t *testing.T) {
	descs := Plan(project("/app"), instructions()[:1])
	var consumer Descriptor
	for _, d := range descs {
		if d.Kind == KindConsumer {
			consumer = d
		}
	}
	out, err := Render(consumer)
	require.NoError(t, err)
	assert.Contains(t, string(out), `getConsumerProps().get("orderLine")`)
	assert.Contains(t, string(out), `TOPIC_KEY = "order_line"`)
}

func TestWriteSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	descs := Plan(project(dir), instructions())

	written, err := Write(dir, descs)
	require.NoError(t, err)
	assert.Equal(t, paths(descs), written)
	for _, p := range written {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(p)))
		assert.NoError(t, err)
	}

	written, err = Write(dir, descs)
	require.NoError(t, err)
	assert.Empty(t, written, "second run writes nothing")

	edited := filepath.Join(dir, filepath.FromSlash(descs[0].Path))
	require.NoError(t, os.WriteFile(edited, []byte("// edited\n"), 0o644))
	written, err = Write(dir, descs)
	require.NoError(t, err)
	assert.Equal(t, []string{descs[0].Path}, written)
}
