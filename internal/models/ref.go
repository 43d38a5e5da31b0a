// internal/models/ref.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref is a reference to another document. The backend sends either the bare
// id or, when it populates the reference, the referenced object itself.
type Ref struct {
	ID   string
	Name string
}

func NewRef(id string) Ref {
	return Ref{ID: id}
}

func (r Ref) IsZero() bool {
	return r.ID == ""
}

func (r Ref) String() string {
	return r.ID
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	var populated struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &populated); err != nil {
		return fmt.Errorf("reference must be an id or an object with _id: %w", err)
	}
	*r = Ref{ID: populated.ID, Name: populated.Name}
	return nil
}

// MarshalJSON always writes the bare id; an empty ref is null.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
