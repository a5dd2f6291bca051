package models

import "encoding/json"

// DemoSeedResult is returned by POST /demo/init. Backends have shipped two
// shapes: {users, availabilities} and {candidates, recruiters}; both decode here.
type DemoSeedResult struct {
	Users          []json.RawMessage `json:"users,omitempty"`
	Availabilities []json.RawMessage `json:"availabilities,omitempty"`
	Candidates     []json.RawMessage `json:"candidates,omitempty"`
	Recruiters     []json.RawMessage `json:"recruiters,omitempty"`
}

// UserCount returns how many users the seed created
func (r DemoSeedResult) UserCount() int {
	if len(r.Users) > 0 {
		return len(r.Users)
	}
	return len(r.Candidates) + len(r.Recruiters)
}

// SlotCount returns how many availability slots the seed created
func (r DemoSeedResult) SlotCount() int {
	return len(r.Availabilities)
}
