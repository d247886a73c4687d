// Package scaffold reads the metadata a JHipster-style scaffold leaves in the
// application directory.
//
// Directory layout:
//
//	<app>/
//	    .yo-rc.json              # generator-jhipster: baseName, packageName
//	    .jhipster/<Entity>.json  # one file per entity; the name is the entity
package scaffold

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Project is a scaffolded application directory.
type Project struct {
	Dir         string
	BaseName    string
	PackageName string
}

type yoRC struct {
	Generator struct {
		BaseName    string `json:"baseName"`
		PackageName string `json:"packageName"`
	} `json:"generator-jhipster"`
}

// Open reads <dir>/.yo-rc.json. Returns an error if it is missing or lacks a
// base name.
func Open(dir string) (*Project, error) {
	path := filepath.Join(dir, ".yo-rc.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Newf("%s is not a scaffolded application: %s not found", dir, path),
				"run the generator from the application root")
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var rc yoRC
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if rc.Generator.BaseName == "" {
		return nil, errors.Newf("%s: generator-jhipster.baseName is empty", path)
	}
	pkg := rc.Generator.PackageName
	if pkg == "" {
		pkg = "com.mycompany." + strings.ToLower(rc.Generator.BaseName)
	}
	return &Project{Dir: dir, BaseName: rc.Generator.BaseName, PackageName: pkg}, nil
}

// Entities returns the entity names found in .jhipster/, sorted. A missing
// directory yields no entities.
func (p *Project) Entities() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.Dir, ".jhipster"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read .jhipster")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// PackageDir returns the package name as a slash-separated path.
func (p *Project) PackageDir() string {
	return strings.ReplaceAll(p.PackageName, ".", "/")
}

// Path joins rel onto the project directory.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Dir, filepath.FromSlash(rel))
}
