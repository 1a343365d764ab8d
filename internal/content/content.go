// Package content loads the tour definition: the ordered room list, the
// interactive objects declared per room, and the door portals between rooms.
package content

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFS embed.FS

// Tour is the full declarative description of one tour.
type Tour struct {
	Title     string `yaml:"title"`
	StartRoom string `yaml:"startRoom"`
	Rooms     []Room `yaml:"rooms"`
}

// Room declares one mutually-exclusive stage of the tour.
type Room struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Required int      `yaml:"required"` // objects needed to complete the room; defaults to len(Objects)
	Objects  []Object `yaml:"objects"`
	Doors    []Door   `yaml:"doors"`
}

// Object declares an interactive point of interest.
type Object struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Audio       string `yaml:"audio"`
}

// Door declares a portal from its containing room to Target.
type Door struct {
	Target   string  `yaml:"target"`
	Locked   *bool   `yaml:"locked"` // nil means locked (portals are created locked by default)
	Position Vec3    `yaml:"position"`
	Radius   float64 `yaml:"radius"` // activation radius in meters; 0 means the default
}

// Vec3 is a world-space position.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// IsLocked reports the door's initial lock state.
func (d Door) IsLocked() bool {
	return d.Locked == nil || *d.Locked
}

// RoomIDs returns the declared room sequence in order.
func (t *Tour) RoomIDs() []string {
	ids := make([]string, 0, len(t.Rooms))
	for _, r := range t.Rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

// Room returns the declared room by id.
func (t *Tour) Room(id string) *Room {
	for i := range t.Rooms {
		if t.Rooms[i].ID == id {
			return &t.Rooms[i]
		}
	}
	return nil
}

// RequiredCount returns how many completions the room needs.
func (r *Room) RequiredCount() int {
	if r.Required > 0 {
		return r.Required
	}
	return len(r.Objects)
}

// ObjectIDs returns the room's declared object ids in order.
func (r *Room) ObjectIDs() []string {
	ids := make([]string, 0, len(r.Objects))
	for _, o := range r.Objects {
		ids = append(ids, o.ID)
	}
	return ids
}

// Parse decodes and validates a tour definition.
func Parse(data []byte) (*Tour, error) {
	var t Tour
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding tour content: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads a tour definition from path, or the embedded default tour when
// path is empty.
func Load(path string) (*Tour, error) {
	if path == "" {
		data, err := defaultFS.ReadFile("default.yaml")
		if err != nil {
			return nil, fmt.Errorf("reading embedded tour content: %w", err)
		}
		return Parse(data)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tour content %s: %w", path, err)
	}
	return Parse(data)
}

// validate rejects configurations whose state machines would silently
// misbehave at runtime: duplicate identities, dangling door targets, and
// object ids whose embedded room code disagrees with the room that declares
// them (gating and aggregation would diverge).
func (t *Tour) validate() error {
	if len(t.Rooms) == 0 {
		return fmt.Errorf("tour content: no rooms declared")
	}

	roomIDs := make(map[string]bool, len(t.Rooms))
	for _, r := range t.Rooms {
		if r.ID == "" {
			return fmt.Errorf("tour content: room with empty id")
		}
		if roomIDs[r.ID] {
			return fmt.Errorf("tour content: duplicate room id %q", r.ID)
		}
		roomIDs[r.ID] = true
	}

	if t.StartRoom == "" {
		t.StartRoom = t.Rooms[0].ID
	}
	if !roomIDs[t.StartRoom] {
		return fmt.Errorf("tour content: start room %q is not a declared room", t.StartRoom)
	}

	objectIDs := make(map[string]string) // object id -> declaring room
	for _, r := range t.Rooms {
		if r.Required > len(r.Objects) {
			return fmt.Errorf("tour content: room %q requires %d objects but declares %d", r.ID, r.Required, len(r.Objects))
		}
		for _, o := range r.Objects {
			if o.ID == "" {
				return fmt.Errorf("tour content: room %q declares an object with empty id", r.ID)
			}
			if owner, dup := objectIDs[o.ID]; dup {
				return fmt.Errorf("tour content: object %q declared by both %q and %q", o.ID, owner, r.ID)
			}
			objectIDs[o.ID] = r.ID

			if embedded, ok := RoomFromObjectID(o.ID); ok && embedded != r.ID {
				return fmt.Errorf("tour content: object %q embeds room %q but is declared by %q", o.ID, embedded, r.ID)
			}
		}
		for _, d := range r.Doors {
			if d.Target == "" {
				return fmt.Errorf("tour content: room %q has a door with no target", r.ID)
			}
			if !roomIDs[d.Target] {
				return fmt.Errorf("tour content: room %q has a door to unknown room %q", r.ID, d.Target)
			}
			if d.Target == r.ID {
				return fmt.Errorf("tour content: room %q has a door to itself", r.ID)
			}
		}
	}
	return nil
}

// RoomFromObjectID extracts the owning room embedded in an object id of the
// form obj-{roomId}-{name}. The second return is false when the id does not
// follow the convention.
func RoomFromObjectID(objectID string) (string, bool) {
	parts := strings.Split(objectID, "-")
	if len(parts) >= 3 && parts[0] == "obj" && parts[1] != "" {
		return parts[1], true
	}
	return "", false
}
