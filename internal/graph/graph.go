package graph

import (
	"encoding/json"
	"time"
)

// Entity is a named node in the agent knowledge graph. Entities are
// immutable within a snapshot; all mutation happens upstream of this
// service.
type Entity struct {
	Name         string        `json:"name"`
	EntityType   string        `json:"entityType"`
	Created      time.Time     `json:"created"`
	Updated      *time.Time    `json:"updated,omitempty"`
	Observations []Observation `json:"observations"`
}

// Observation is either a plain string or a rich record on the wire.
// Both shapes normalize to this struct at decode time.
type Observation struct {
	Text      string     `json:"text"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Signature *Signature `json:"signature,omitempty"`
}

// Signature attests an observation. Only the hex payload matters to the
// scorer; verification is upstream.
type Signature struct {
	SignatureHex string `json:"signature_hex"`
}

// richObservation is the record shape of an observation. Some producers
// write the text under "text", others under "observation".
type richObservation struct {
	Text        string     `json:"text"`
	Observation string     `json:"observation"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Signature   *Signature `json:"signature"`
}

// UnmarshalJSON accepts both wire shapes for observations.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*o = Observation{Text: plain}
		return nil
	}

	var rich richObservation
	if err := json.Unmarshal(data, &rich); err != nil {
		return err
	}

	text := rich.Text
	if text == "" {
		text = rich.Observation
	}

	*o = Observation{
		Text:      text,
		ExpiresAt: rich.ExpiresAt,
		Signature: rich.Signature,
	}
	return nil
}

// Active reports whether the observation has not expired at the given instant.
func (o Observation) Active(now time.Time) bool {
	return o.ExpiresAt == nil || o.ExpiresAt.After(now)
}

// Signed reports whether a non-empty signature is attached.
func (o Observation) Signed() bool {
	return o.Signature != nil && o.Signature.SignatureHex != ""
}

// Relation is a labeled directed edge between two entities.
type Relation struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Snapshot is the whole-graph view read atomically from the KV store.
// Relations referring to unknown entities are tolerated; the reputation
// engine skips them and the connectedness signal still counts them.
type Snapshot struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// Entity returns the named entity, if present in the snapshot.
func (s *Snapshot) Entity(name string) (*Entity, bool) {
	for i := range s.Entities {
		if s.Entities[i].Name == name {
			return &s.Entities[i], true
		}
	}
	return nil, false
}
