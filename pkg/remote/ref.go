package remote

import (
	"fmt"
	"strings"
)

// ControllerType is the type displays register with.
const ControllerType = "picopaper"

// ControllerRef is a reference to a registered display.
type ControllerRef struct {
	Type string
	ID   string
}

// ParseRef parses "type/id". A bare id gets ControllerType.
func ParseRef(s string) (ControllerRef, error) {
	var ref ControllerRef
	switch parts := strings.Split(s, "/"); len(parts) {
	case 1:
		ref = ControllerRef{Type: ControllerType, ID: parts[0]}
	case 2:
		ref = ControllerRef{Type: parts[0], ID: parts[1]}
	default:
		return ref, fmt.Errorf("invalid display ref %q", s)
	}
	if !ref.IsValid() {
		return ref, fmt.Errorf("invalid display ref %q", s)
	}
	return ref, nil
}

// Name retrieves the name from ref.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != "" && !strings.ContainsAny(r.Type+r.ID, "/+#")
}

// ControllerMeta is the retained metadata of a display.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo provides information of a registered display.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}
