// Package workflow runs one generation session end to end: load both config
// files, plan, merge, render, splice, then write.
//
// Nothing is written until both files merged, rendered and spliced cleanly.
// Each file is replaced atomically.
package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"

	"kafkagen/internal/artifact"
	"kafkagen/internal/kafkaconf"
	"kafkagen/internal/logger"
	"kafkagen/internal/planner"
	"kafkagen/internal/prompt"
	"kafkagen/internal/scaffold"
	"kafkagen/internal/settings"
	"kafkagen/internal/yamlblock"
)

// Options configure a Run.
type Options struct {
	Dir      string
	Settings *settings.Settings
	Asker    prompt.Asker
	// Mode skips the mode question when set.
	Mode planner.Mode
	// Topics are upserted after the settings topics.
	Topics []kafkaconf.Topic
	// DryRun prints the new blocks to Out instead of writing anything.
	DryRun bool
	Out    io.Writer
}

// Result describes what a Run did.
type Result struct {
	Plan planner.Plan
	// Written lists the config files replaced, relative to the project.
	Written []string
	// Artifacts lists the source files written, relative to the project.
	Artifacts []string
}

// target is one config file going through merge, render and splice.
type target struct {
	rel  string
	path string
	doc  *kafkaconf.Document
	text []byte
	out  []byte
}

// Run executes a session.
func Run(ctx context.Context, opts Options) (*Result, error) {
	st := opts.Settings
	if st == nil {
		var err error
		if st, err = settings.Load(opts.Dir); err != nil {
			return nil, err
		}
	}
	ns := st.Namespace

	project, err := scaffold.Open(opts.Dir)
	if err != nil {
		return nil, err
	}
	candidates, err := project.Entities()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.WithHint(
			errors.Newf("no entities found in %s", project.Path(".jhipster")),
			"generate entities before adding broker components")
	}

	main := load(project, st.MainConfig, ns)
	test := load(project, st.TestConfig, ns)

	ix := kafkaconf.IndexOf(main.doc)
	logger.Logger.Debugw("existing components",
		logger.FieldFile, main.rel,
		logger.FieldCount, ix.Len())

	plan, err := planner.Run(ctx, opts.Asker, planner.Input{
		Candidates: candidates,
		Index:      ix,
		Mode:       opts.Mode,
	})
	if err != nil {
		return nil, err
	}
	res := &Result{Plan: plan}
	extraTopics := append(st.TopicList(), opts.Topics...)
	if plan.Empty() && len(extraTopics) == 0 {
		logger.Logger.Infow("nothing to generate")
		return res, nil
	}

	instructions := plan.Instructions(project)
	for _, ins := range instructions {
		logger.Logger.Infow("component planned",
			logger.FieldEntity, ins.EntityName,
			logger.FieldComponent, ins.Component.String())
	}

	globals := func(doc *kafkaconf.Document) kafkaconf.Globals {
		return kafkaconf.Globals{
			BootstrapServers: st.BootstrapServers,
			PollingTimeoutMs: plan.PollingTimeoutMs,
			Topics:           append(plan.Topics(project, doc), extraTopics...),
		}
	}

	mainV, err := kafkaconf.Merge(main.doc, instructions, globals(main.doc))
	if err != nil {
		return nil, errors.Wrapf(err, "merge %s", main.rel)
	}
	testV, err := kafkaconf.Merge(test.doc, instructions, globals(test.doc))
	if err != nil {
		return nil, errors.Wrapf(err, "merge %s", test.rel)
	}
	if err := main.rewrite(ns, mainV.Main); err != nil {
		return nil, err
	}
	if err := test.rewrite(ns, testV.Test); err != nil {
		return nil, err
	}

	if opts.DryRun {
		return res, printDryRun(opts.Out, ns, main, test)
	}

	for _, t := range []*target{main, test} {
		if bytes.Equal(t.text, t.out) {
			logger.Logger.Debugw("config unchanged", logger.FieldFile, t.rel)
			continue
		}
		if err := writeAtomic(t.path, t.out); err != nil {
			return res, errors.Wrapf(err, "write %s", t.rel)
		}
		logger.Logger.Infow("config written", logger.FieldFile, t.rel)
		res.Written = append(res.Written, t.rel)
	}

	if st.Artifacts {
		written, err := artifact.Write(project.Dir, artifact.Plan(project, instructions))
		res.Artifacts = written
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func load(p *scaffold.Project, rel, ns string) *target {
	path := p.Path(rel)
	doc, text := kafkaconf.LoadFile(path, ns)
	return &target{rel: rel, path: path, doc: doc, text: text}
}

func (t *target) rewrite(ns string, doc *kafkaconf.Document) error {
	block, err := yamlblock.Render(ns, doc)
	if err != nil {
		return errors.Wrapf(err, "render %s", t.rel)
	}
	out, err := yamlblock.Splice(t.text, ns, block)
	if err != nil {
		return errors.Wrapf(err, "splice %s", t.rel)
	}
	t.out = out
	return nil
}

func printDryRun(w io.Writer, ns string, targets ...*target) error {
	if w == nil {
		w = os.Stdout
	}
	for _, t := range targets {
		block, _, err := yamlblock.Extract(t.out, ns)
		if err != nil {
			return errors.Wrapf(err, "extract %s", t.rel)
		}
		if _, err := fmt.Fprintf(w, "# %s\n%s\n", t.rel, block); err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic replaces path with content through a temp file in the same
// directory. An existing file keeps its permissions; a symlinked path is
// written through to its target so the link survives.
func writeAtomic(path string, content []byte) error {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "resolve %s", path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", dir)
	}
	return renameio.WriteFile(path, content, 0o644, renameio.WithExistingPermissions())
}
