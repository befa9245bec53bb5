// Package plans loads the subscription plan catalog from YAML and seeds it
// into the store.
package plans

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"taskflow/internal/domain"
)

//go:embed default_plans.yaml
var defaultCatalog []byte

// Entry is one plan as written in the catalog file.
type Entry struct {
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	PriceCents       int64    `yaml:"price_cents"`
	ProjectsLimit    int      `yaml:"projects_limit"`
	TeamMembersLimit int      `yaml:"team_members_limit"`
	TasksLimit       int      `yaml:"tasks_limit"`
	Features         []string `yaml:"features"`
	// Inactive hides the plan from listings without deleting it.
	Inactive bool `yaml:"inactive"`
}

// Catalog is the parsed plan file.
type Catalog struct {
	Plans []Entry `yaml:"plans"`
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (Catalog, error) {
	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Catalog{}, fmt.Errorf("read plans file: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse plans: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks names are unique and limits are either positive or unlimited.
func (c Catalog) Validate() error {
	if len(c.Plans) == 0 {
		return fmt.Errorf("plans: catalog is empty")
	}
	seen := make(map[string]struct{}, len(c.Plans))
	for i, p := range c.Plans {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("plans[%d]: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("plans[%d]: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}
		if p.PriceCents < 0 {
			return fmt.Errorf("plan %q: price_cents must not be negative", name)
		}
		for field, v := range map[string]int{
			"projects_limit":     p.ProjectsLimit,
			"team_members_limit": p.TeamMembersLimit,
			"tasks_limit":        p.TasksLimit,
		} {
			if v < domain.Unlimited {
				return fmt.Errorf("plan %q: %s must be -1 or greater", name, field)
			}
		}
	}
	return nil
}

// Find returns the entry named name.
func (c Catalog) Find(name string) (Entry, bool) {
	for _, p := range c.Plans {
		if p.Name == name {
			return p, true
		}
	}
	return Entry{}, false
}

// Plan converts the entry into a domain plan.
func (e Entry) Plan() domain.Plan {
	return domain.Plan{
		Name:             strings.TrimSpace(e.Name),
		Description:      e.Description,
		PriceCents:       e.PriceCents,
		ProjectsLimit:    e.ProjectsLimit,
		TeamMembersLimit: e.TeamMembersLimit,
		TasksLimit:       e.TasksLimit,
		Features:         append([]string(nil), e.Features...),
		IsActive:         !e.Inactive,
	}
}

// Seed upserts every catalog plan and returns the stored rows.
func Seed(ctx context.Context, repo domain.PlanRepository, c Catalog) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(c.Plans))
	for _, e := range c.Plans {
		p := e.Plan()
		if err := repo.Upsert(ctx, &p); err != nil {
			return nil, fmt.Errorf("seed plan %q: %w", p.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}
