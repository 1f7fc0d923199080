// Package projects reads the devstats projects.yaml file and turns a
// project's entry into config.Overrides.
package projects

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/devstats/gha2db/internal/config"
	"github.com/devstats/gha2db/internal/convert"
)

// Project is one entry of projects.yaml.
type Project struct {
	Name         string   `yaml:"name"`
	Order        int      `yaml:"order"`
	MainRepo     string   `yaml:"main_repo"`
	StartDate    string   `yaml:"start_date"`
	SharedDB     string   `yaml:"shared_db"`
	ProjectScale *float64 `yaml:"project_scale"`
	Disabled     bool     `yaml:"disabled"`
}

// File is the parsed projects.yaml.
type File struct {
	Projects map[string]Project `yaml:"projects"`
}

// Load reads and parses path from fs.
func Load(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &f, nil
}

// Overrides returns the values projects.yaml defines for name. ok is false
// when the project is not listed.
func (f *File) Overrides(name string) (ov config.Overrides, ok bool, err error) {
	p, ok := f.Projects[name]
	if !ok {
		return config.Overrides{}, false, nil
	}

	ov.Project = &name
	if p.StartDate != "" {
		start, err := convert.Time(name+".start_date", p.StartDate)
		if err != nil {
			return config.Overrides{}, true, err
		}
		ov.StartDate = &start
	}
	if p.SharedDB != "" {
		ov.SharedDB = &p.SharedDB
	}
	if p.MainRepo != "" {
		ov.MainRepo = &p.MainRepo
	}
	ov.ProjectScale = p.ProjectScale
	return ov, true, nil
}

// Enabled lists the projects to sync, ordered by their order key then name,
// after applying GHA2DB_PROJECTS_OVERRIDE.
func (f *File) Enabled(c *config.Ctx) []string {
	names := make([]string, 0, len(f.Projects))
	for name, p := range f.Projects {
		if c.ProjectEnabled(name, p.Disabled) {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := f.Projects[names[i]], f.Projects[names[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return names[i] < names[j]
	})
	return names
}
