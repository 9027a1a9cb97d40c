package model

import (
	"encoding/json"
	"time"
)

// Resource is one marketplace listing of any kind. Kind-specific attributes
// live in Attributes and are flattened next to the common fields in JSON.
type Resource struct {
	ID         string
	Kind       string
	OwnerID    string
	Attributes map[string]any
	Images     []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var reservedKeys = map[string]bool{
	"id": true, "userId": true, "images": true, "createdAt": true, "updatedAt": true,
}

// MarshalJSON writes attributes at the top level. Attribute names that clash
// with the common fields are dropped.
func (r Resource) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+5)
	for k, v := range r.Attributes {
		if reservedKeys[k] {
			continue
		}
		out[k] = v
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	out["id"] = r.ID
	out["userId"] = r.OwnerID
	out["images"] = images
	out["createdAt"] = r.CreatedAt
	out["updatedAt"] = r.UpdatedAt
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. Kind is not part of the wire
// form and is left untouched.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	attrs := make(map[string]any, len(raw))
	for k, v := range raw {
		var err error
		switch k {
		case "id":
			err = json.Unmarshal(v, &r.ID)
		case "userId":
			err = json.Unmarshal(v, &r.OwnerID)
		case "images":
			err = json.Unmarshal(v, &r.Images)
		case "createdAt":
			err = json.Unmarshal(v, &r.CreatedAt)
		case "updatedAt":
			err = json.Unmarshal(v, &r.UpdatedAt)
		default:
			var val any
			err = json.Unmarshal(v, &val)
			attrs[k] = val
		}
		if err != nil {
			return err
		}
	}
	r.Attributes = attrs
	return nil
}

// String returns the named attribute when it is a string.
func (r *Resource) String(name string) string {
	s, _ := r.Attributes[name].(string)
	return s
}
