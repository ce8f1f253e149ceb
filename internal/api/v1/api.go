package v1

import (
	"errors"
	"net/http"
	"time"

	"wanwatch/internal/api/response"
	"wanwatch/internal/types"
	"wanwatch/internal/version"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// staleGrace is added to three poll intervals before a silent loop is
// reported unhealthy
const staleGrace = time.Minute

// StatusProvider exposes the poll loop progress
type StatusProvider interface {
	Status() types.MonitorStatus
}

// AlertView summarises the alert record as of the last cycle
type AlertView struct {
	Active    bool          `json:"active"`
	RaisedAt  *time.Time    `json:"raised_at,omitempty"`
	ActiveFor time.Duration `json:"active_for,omitempty"`
}

// StatusView is the /status payload
type StatusView struct {
	types.MonitorStatus
	Alert AlertView `json:"alert"`
}

// API represents the API
type API struct {
	monitor StatusProvider
	logger  *zap.Logger
	now     func() time.Time
}

// NewAPI creates new API
func NewAPI(monitor StatusProvider, logger *zap.Logger) *API {
	return &API{
		monitor: monitor,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterRoutes registers API routes
func (api *API) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/status", api.getStatus)
	r.GET("/health", api.healthCheck)
}

// getStatus handles status requests
func (api *API) getStatus(c *gin.Context) {
	status := api.monitor.Status()

	view := StatusView{MonitorStatus: status}
	if status.LastCycle != nil && status.LastCycle.State.Active {
		raisedAt := status.LastCycle.State.RaisedAt
		view.Alert = AlertView{
			Active:    true,
			RaisedAt:  &raisedAt,
			ActiveFor: api.now().Sub(raisedAt).Round(time.Second),
		}
	}

	response.New(c, api.logger).Success(view)
}

// healthCheck handles health check requests
func (api *API) healthCheck(c *gin.Context) {
	resp := response.New(c, api.logger)

	health := api.Health()
	if !health.Healthy {
		resp.ErrorWithData(http.StatusServiceUnavailable, errors.New("monitor loop stalled"), health)
		return
	}

	resp.Success(health)
}

// Health reports the loop as unhealthy once no cycle has finished for
// three intervals plus a grace period. Source failures only degrade the
// component details.
func (api *API) Health() types.HealthStatus {
	now := api.now()
	status := api.monitor.Status()

	health := types.HealthStatus{
		Healthy:   true,
		Timestamp: now,
		Version:   version.GetInfo().Version,
		StartTime: status.StartTime,
		Uptime:    now.Sub(status.StartTime).Round(time.Second),
	}

	last := status.LastCycle
	if last == nil {
		health.Details = []types.ComponentStatus{
			{Name: "router", Status: types.ComponentUnknown, Message: "no cycle completed yet"},
			{Name: "dns", Status: types.ComponentUnknown, Message: "no cycle completed yet"},
		}
		return health
	}

	finished := last.StartedAt.Add(last.Duration)
	if now.Sub(finished) > 3*status.Interval+staleGrace {
		health.Healthy = false
	}

	health.Details = []types.ComponentStatus{
		componentStatus("router", last.Observation.HaveRouter, last.StartedAt),
		componentStatus("dns", last.Observation.HaveDNS, last.StartedAt),
	}
	return health
}

func componentStatus(name string, ok bool, at time.Time) types.ComponentStatus {
	if ok {
		return types.ComponentStatus{Name: name, Status: types.ComponentOK, LastCheck: at}
	}
	return types.ComponentStatus{
		Name:      name,
		Status:    types.ComponentDegraded,
		Message:   "address unavailable in last cycle",
		LastCheck: at,
	}
}
