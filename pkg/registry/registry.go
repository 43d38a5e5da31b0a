// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bluemedix-workflow/internal/common/errors"
	"bluemedix-workflow/internal/workflow"
)

// Categories derived from the endpoint a step calls.
const (
	CategoryAuth          = "auth"
	CategoryCatalog       = "catalog"
	CategoryFranchise     = "franchise"
	CategoryOrders        = "orders"
	CategoryNegativeCheck = "negative-check"
	CategoryOther         = "other"
)

func LoadRegistry(path string) (*StepCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg StepCatalog
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Save writes the catalog as indented JSON, creating the directory if needed.
func Save(reg *StepCatalog, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// FromSteps builds a catalog entry per step, in execution order.
func FromSteps(version string, steps []workflow.Step, now time.Time) *StepCatalog {
	reg := &StepCatalog{
		Version:     version,
		LastUpdated: now.UTC().Format(time.RFC3339),
		Steps:       make([]StepEntry, 0, len(steps)),
	}
	for _, s := range steps {
		deps := append([]string{}, s.DependsOn...)
		reg.Steps = append(reg.Steps, StepEntry{
			ID:          s.Name,
			Description: s.Description,
			Category:    categorize(s),
			Endpoint:    s.Endpoint,
			DependsOn:   deps,
			ErrorCodes:  errorCodes(s),
		})
	}
	return reg
}

func categorize(s workflow.Step) string {
	if strings.HasPrefix(s.Name, "reject-") {
		return CategoryNegativeCheck
	}
	fields := strings.Fields(s.Endpoint)
	if len(fields) < 2 {
		return CategoryOther
	}
	segments := strings.Split(strings.TrimPrefix(fields[1], "/api/"), "/")
	switch segments[0] {
	case "auth":
		return CategoryAuth
	case "categories", "products":
		return CategoryCatalog
	case "users", "franchises":
		return CategoryFranchise
	case "addresses", "orders":
		return CategoryOrders
	}
	return CategoryOther
}

func errorCodes(s workflow.Step) []string {
	codes := []string{
		string(errors.ErrCodeTransportFailed),
		string(errors.ErrCodeBackendRejected),
		string(errors.ErrCodeAssertionFailed),
		string(errors.ErrCodeStepPanicked),
		string(errors.ErrCodeRunCancelled),
	}
	if len(s.DependsOn) > 0 {
		codes = append(codes, string(errors.ErrCodeDependencyNotMet))
	}
	return codes
}

// Validate checks the catalog for missing fields, duplicate ids and
// dependencies that do not name an earlier step.
func Validate(reg *StepCatalog) error {
	if len(reg.Steps) == 0 {
		return fmt.Errorf("registry contains no steps")
	}
	ids := make(map[string]bool, len(reg.Steps))
	for _, step := range reg.Steps {
		if step.ID == "" {
			return fmt.Errorf("step missing required field: ID")
		}
		if ids[step.ID] {
			return fmt.Errorf("duplicate step ID: %s", step.ID)
		}
		if step.Endpoint == "" {
			return fmt.Errorf("step %s missing required field: Endpoint", step.ID)
		}
		if step.Category == "" {
			return fmt.Errorf("step %s missing required field: Category", step.ID)
		}
		for _, dep := range step.DependsOn {
			if !ids[dep] {
				return fmt.Errorf("step %s depends on %s, which is not an earlier step", step.ID, dep)
			}
		}
		ids[step.ID] = true
	}
	return nil
}

// Diff lists how want differs from got by step id, endpoint and dependencies.
// An empty result means the catalogs describe the same workflow.
func Diff(got, want *StepCatalog) []string {
	var out []string
	index := make(map[string]StepEntry, len(got.Steps))
	for _, s := range got.Steps {
		index[s.ID] = s
	}
	seen := make(map[string]bool, len(want.Steps))
	for _, w := range want.Steps {
		seen[w.ID] = true
		g, ok := index[w.ID]
		if !ok {
			out = append(out, fmt.Sprintf("missing step %s", w.ID))
			continue
		}
		if g.Endpoint != w.Endpoint {
			out = append(out, fmt.Sprintf("step %s endpoint is %q, want %q", w.ID, g.Endpoint, w.Endpoint))
		}
		if strings.Join(g.DependsOn, ",") != strings.Join(w.DependsOn, ",") {
			out = append(out, fmt.Sprintf("step %s depends on [%s], want [%s]", w.ID, strings.Join(g.DependsOn, ", "), strings.Join(w.DependsOn, ", ")))
		}
	}
	for _, g := range got.Steps {
		if !seen[g.ID] {
			out = append(out, fmt.Sprintf("unexpected step %s", g.ID))
		}
	}
	return out
}
