// Package remote holds the remote configuration model and its single-owner
// store. The store is only ever mutated by the front end; the job tracker
// never sees it.
package remote

import "encoding/json"

// Origin records where a remote configuration came from.
type Origin int

const (
	// OriginUser marks entries created or edited through this application.
	OriginUser Origin = iota
	// OriginDiscovered marks entries seeded from the engine's own
	// configuration. They are owned by the engine: never deleted or
	// duplicated here, and an edit spawns a user entry instead of mutating
	// them.
	OriginDiscovered
)

func (o Origin) String() string {
	if o == OriginDiscovered {
		return "discovered"
	}
	return "user"
}

// Remote pairs a named source locator with a destination locator.
// Names are not required to be unique.
type Remote struct {
	Name   string
	Source string
	Dest   string
	Origin Origin
}

// HasSource reports whether a source locator is set.
func (r Remote) HasSource() bool {
	return r.Source != ""
}

// HasDest reports whether a destination locator is set.
func (r Remote) HasDest() bool {
	return r.Dest != ""
}

// record is the persisted form of a Remote. Origin is deliberately absent:
// only user entries are written, so origin is implied on load.
type record struct {
	Name   string `json:"remote_name"`
	Source string `json:"source_locator,omitempty"`
	Dest   string `json:"destination_locator,omitempty"`
}

type fileFormat struct {
	Remotes []record `json:"remotes"`
}

func marshalRemotes(remotes []Remote) ([]byte, error) {
	out := fileFormat{Remotes: make([]record, 0, len(remotes))}
	for _, r := range remotes {
		if r.Origin == OriginDiscovered {
			continue
		}
		out.Remotes = append(out.Remotes, record{Name: r.Name, Source: r.Source, Dest: r.Dest})
	}
	return json.MarshalIndent(out, "", "  ")
}

func unmarshalRemotes(data []byte) ([]Remote, error) {
	var in fileFormat
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	remotes := make([]Remote, 0, len(in.Remotes))
	for _, rec := range in.Remotes {
		remotes = append(remotes, Remote{
			Name:   rec.Name,
			Source: rec.Source,
			Dest:   rec.Dest,
			Origin: OriginUser,
		})
	}
	return remotes, nil
}
