package types

import "time"

// Component status values
const (
	ComponentOK       = "ok"
	ComponentDegraded = "degraded"
	ComponentUnknown  = "unknown"
)

// HealthStatus represents the monitor health reported by the status server
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	StartTime time.Time         `json:"start_time"`
	Uptime    time.Duration     `json:"uptime"`
	Details   []ComponentStatus `json:"details,omitempty"`
}

// ComponentStatus represents one address source as seen in the last cycle
type ComponentStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	LastCheck time.Time `json:"last_check,omitempty"`
}

// MonitorStatus is a point-in-time copy of the poll loop progress
type MonitorStatus struct {
	InstanceID string        `json:"instance_id"`
	Hostname   string        `json:"hostname"`
	Interval   time.Duration `json:"interval"`
	StartTime  time.Time     `json:"start_time"`
	Cycles     uint64        `json:"cycles"`
	LastCycle  *CycleResult  `json:"last_cycle,omitempty"`
}
