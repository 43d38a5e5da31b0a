// pkg/registry/schema.go
package registry

// StepCatalog describes the workflow's steps for tooling and dashboards.
type StepCatalog struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Steps       []StepEntry `json:"steps"`
}

type StepEntry struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Endpoint    string   `json:"endpoint"`
	DependsOn   []string `json:"dependsOn"`
	ErrorCodes  []string `json:"errorCodes"`
}
