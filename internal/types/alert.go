package types

import "time"

// Observation is the pair of addresses fetched during one poll cycle.
// An address that could not be fetched is absent, which is distinct from
// an empty string and never compares equal to anything.
type Observation struct {
	RouterIP   string `json:"router_ip,omitempty"`
	HaveRouter bool   `json:"have_router"`
	DNSIP      string `json:"dns_ip,omitempty"`
	HaveDNS    bool   `json:"have_dns"`
}

// NewObservation builds an observation from two optional lookups.
func NewObservation(routerIP string, haveRouter bool, dnsIP string, haveDNS bool) Observation {
	return Observation{
		RouterIP:   routerIP,
		HaveRouter: haveRouter,
		DNSIP:      dnsIP,
		HaveDNS:    haveDNS,
	}
}

// AlertState is the persisted alert record.
// RaisedAt is meaningful only while Active is true.
type AlertState struct {
	Active   bool      `json:"active"`
	RaisedAt time.Time `json:"raised_at,omitempty"`
}

// Inactive returns the state with no alert raised.
func Inactive() AlertState {
	return AlertState{}
}

// ActiveSince returns an active state raised at t.
func ActiveSince(t time.Time) AlertState {
	return AlertState{Active: true, RaisedAt: t}
}

// Action is what a reconciliation cycle decided to do.
type Action string

const (
	ActionSkipRouterUnavailable Action = "skip_router_unavailable"
	ActionSkipDNSUnavailable    Action = "skip_dns_unavailable"
	ActionSkipStateUnavailable  Action = "skip_state_unavailable"
	ActionNone                  Action = "none"
	ActionRaise                 Action = "raise"
	ActionSuppress              Action = "suppress"
	ActionClear                 Action = "clear"
)

// CycleResult summarises one completed cycle.
type CycleResult struct {
	Observation Observation   `json:"observation"`
	Action      Action        `json:"action"`
	Notified    bool          `json:"notified"`
	State       AlertState    `json:"state"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}
