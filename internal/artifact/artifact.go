// Package artifact decides which source files a plan produces and writes
// them.
//
// Plan is pure; Write is the only function touching the file system. Files
// are written in sorted path order and a file whose content is unchanged is
// left alone, so a re-run with the same plan writes nothing.
package artifact

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/cockroachdb/errors"

	"kafkagen/internal/kafkaconf"
	"kafkagen/internal/logger"
	"kafkagen/internal/scaffold"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Kind identifies what a descriptor renders.
type Kind string

const (
	KindConsumer     Kind = "consumer"
	KindDeserializer Kind = "deserializer"
	KindProducer     Kind = "producer"
	KindSerializer   Kind = "serializer"
	KindProperties   Kind = "kafka-properties"
)

// Data is what templates see.
type Data struct {
	PackageName string
	BaseName    string
	// Entity fields are empty for the shared properties file.
	Entity      string
	EntityClass string
	EntityKey   string
	TopicKey    string
}

// Descriptor is one file to render. Path is relative to the project root,
// slash-separated.
type Descriptor struct {
	Kind Kind
	Path string
	Data Data
}

// Plan returns the descriptors for instructions, sorted by path. A consumer
// brings its deserializer, a producer its serializer; the shared properties
// class is included once whenever anything is generated.
func Plan(p *scaffold.Project, instructions []kafkaconf.Instruction) []Descriptor {
	if len(instructions) == 0 {
		return nil
	}
	base := "src/main/java/" + p.PackageDir()
	var out []Descriptor
	for _, ins := range instructions {
		d := Data{
			PackageName: p.PackageName,
			BaseName:    p.BaseName,
			Entity:      ins.EntityName,
			EntityClass: kafkaconf.EntityClass(ins.EntityName),
			EntityKey:   ins.EntityKey,
			TopicKey:    kafkaconf.TopicKey(ins.EntityName),
		}
		switch ins.Component {
		case kafkaconf.Consumer:
			out = append(out,
				Descriptor{KindConsumer, base + "/service/kafka/consumer/" + d.EntityClass + "Consumer.java", d},
				Descriptor{KindDeserializer, base + "/service/kafka/deserializer/" + d.EntityClass + "Deserializer.java", d},
			)
		case kafkaconf.Producer:
			out = append(out,
				Descriptor{KindProducer, base + "/service/kafka/producer/" + d.EntityClass + "Producer.java", d},
				Descriptor{KindSerializer, base + "/service/kafka/serializer/" + d.EntityClass + "Serializer.java", d},
			)
		}
	}
	out = append(out, Descriptor{
		Kind: KindProperties,
		Path: base + "/config/KafkaProperties.java",
		Data: Data{PackageName: p.PackageName, BaseName: p.BaseName},
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Render executes the template of d.
func Render(d Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(d.Kind)+".java.tmpl", d.Data); err != nil {
		return nil, errors.Wrapf(err, "render %s", d.Path)
	}
	return buf.Bytes(), nil
}

// Write renders every descriptor and writes it under dir. It returns the
// relative paths actually written.
func Write(dir string, descs []Descriptor) ([]string, error) {
	sorted := append([]Descriptor(nil), descs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var written []string
	for _, d := range sorted {
		content, err := Render(d)
		if err != nil {
			return written, err
		}
		abs := filepath.Join(dir, filepath.FromSlash(d.Path))
		if old, err := os.ReadFile(abs); err == nil && bytes.Equal(old, content) {
			logger.Logger.Debugw("artifact unchanged", logger.FieldFile, d.Path)
			continue
		}
		if err := writeFile(abs, content); err != nil {
			return written, err
		}
		logger.Logger.Infow("artifact written", logger.FieldFile, d.Path)
		written = append(written, d.Path)
	}
	return written, nil
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
