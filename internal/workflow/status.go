package workflow

import (
	"github.com/cockroachdb/errors"

	"kafkagen/internal/kafkaconf"
	"kafkagen/internal/scaffold"
	"kafkagen/internal/settings"
	"kafkagen/internal/yamlblock"
)

// EntityStatus is one row of a status report.
type EntityStatus struct {
	Name     string
	Key      string
	Consumer bool
	Producer bool
}

// Report is the read-only view printed by `kafkagen status`.
type Report struct {
	Namespace  string
	MainConfig string
	Entities   []EntityStatus
	// Block is the current managed block of the main config, nil when absent.
	Block []byte
}

// Status inspects the project at dir without prompting or writing.
func Status(dir string, st *settings.Settings) (*Report, error) {
	if st == nil {
		var err error
		if st, err = settings.Load(dir); err != nil {
			return nil, err
		}
	}
	project, err := scaffold.Open(dir)
	if err != nil {
		return nil, err
	}
	names, err := project.Entities()
	if err != nil {
		return nil, err
	}
	doc, text := kafkaconf.LoadFile(project.Path(st.MainConfig), st.Namespace)
	ix := kafkaconf.IndexOf(doc)

	r := &Report{Namespace: st.Namespace, MainConfig: st.MainConfig}
	for _, name := range names {
		key := kafkaconf.EntityKey(name)
		r.Entities = append(r.Entities, EntityStatus{
			Name:     name,
			Key:      key,
			Consumer: ix.Has(key, kafkaconf.Consumer),
			Producer: ix.Has(key, kafkaconf.Producer),
		})
	}
	block, ok, err := yamlblock.Extract(text, st.Namespace)
	if err != nil {
		return nil, errors.Wrapf(err, "extract %s", st.MainConfig)
	}
	if ok {
		r.Block = block
	}
	return r, nil
}
