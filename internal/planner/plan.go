package planner

import (
	"kafkagen/internal/kafkaconf"
	"kafkagen/internal/scaffold"
)

const (
	stringDeserializer = "org.apache.kafka.common.serialization.StringDeserializer"
	stringSerializer   = "org.apache.kafka.common.serialization.StringSerializer"
)

// DefaultTopic returns the topic name a new entity is registered with.
func DefaultTopic(p *scaffold.Project, entity string) string {
	return "queuing." + p.BaseName + "." + kafkaconf.TopicKey(entity)
}

// ValueDeserializer returns the fully qualified deserializer class generated
// for entity.
func ValueDeserializer(p *scaffold.Project, entity string) string {
	return p.PackageName + ".service.kafka.deserializer." + kafkaconf.EntityClass(entity) + "Deserializer"
}

// ValueSerializer returns the fully qualified serializer class generated for
// entity.
func ValueSerializer(p *scaffold.Project, entity string) string {
	return p.PackageName + ".service.kafka.serializer." + kafkaconf.EntityClass(entity) + "Serializer"
}

// Instructions turns the plan's requests into merge instructions for project.
func (pl Plan) Instructions(p *scaffold.Project) []kafkaconf.Instruction {
	out := make([]kafkaconf.Instruction, 0, len(pl.Requests))
	for _, r := range pl.Requests {
		ins := kafkaconf.Instruction{
			EntityName: r.Entity,
			EntityKey:  r.EntityKey(),
			Component:  r.Component,
		}
		switch r.Component {
		case kafkaconf.Consumer:
			ins.Settings = kafkaconf.ConsumerSettings{
				KeyCodec:    stringDeserializer,
				ValueCodec:  ValueDeserializer(p, r.Entity),
				GroupID:     p.BaseName,
				OffsetReset: pl.OffsetReset,
			}
		case kafkaconf.Producer:
			ins.Settings = kafkaconf.ProducerSettings{
				KeyCodec:   stringSerializer,
				ValueCodec: ValueSerializer(p, r.Entity),
			}
		}
		out = append(out, ins)
	}
	return out
}

// Entities returns the distinct entity names of the plan in request order.
func (pl Plan) Entities() []string {
	var names []string
	seen := map[string]bool{}
	for _, r := range pl.Requests {
		if !seen[r.Entity] {
			seen[r.Entity] = true
			names = append(names, r.Entity)
		}
	}
	return names
}

// Topics returns the default topic of every plan entity whose topic key is
// not in doc yet.
func (pl Plan) Topics(p *scaffold.Project, doc *kafkaconf.Document) []kafkaconf.Topic {
	var out []kafkaconf.Topic
	for _, name := range pl.Entities() {
		key := kafkaconf.TopicKey(name)
		if _, ok := doc.Topics.Get(key); ok {
			continue
		}
		out = append(out, kafkaconf.Topic{Key: key, Value: DefaultTopic(p, name)})
	}
	return out
}
