package app

import (
	"context"
	"fmt"
	"time"

	"doccov/internal/shared/util"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type pinger interface {
	Ping() error
}

type HealthService struct {
	svc *Service
}

func NewHealthService(svc *Service) *HealthService {
	return &HealthService{svc: svc}
}

// Check probes the parser with a tiny source and reports the state of the
// style checker and history store.
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if h.svc == nil || h.svc.parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	} else if _, err := h.svc.parser.ParseFile("<health>", []byte("def probe():\n    \"\"\"Probe.\"\"\"\n")); err != nil {
		status.Status = "degraded"
		status.Components["parser"] = fmt.Sprintf("error: %v", err)
	} else {
		status.Components["parser"] = "ok"
	}

	if h.svc != nil && h.svc.checker != nil {
		status.Components["checker"] = "ok (" + h.svc.checker.Name() + ")"
	}

	switch {
	case h.svc == nil || h.svc.history == nil:
		status.Components["history"] = "disabled"
	default:
		if p, ok := h.svc.history.(pinger); ok {
			if err := p.Ping(); err != nil {
				status.Status = "degraded"
				status.Components["history"] = fmt.Sprintf("error: %v", err)
				break
			}
		}
		status.Components["history"] = "ok"
		if h.svc.snapshots != nil {
			status.Components["history_queue"] = fmt.Sprintf("%d pending", h.svc.snapshots.Pending())
		}
	}

	if ctx.Err() != nil {
		status.Status = "degraded"
		status.Components["context"] = ctx.Err().Error()
	}
	status.Components["memory"] = fmt.Sprintf("%d MB heap", util.GetHeapAllocMB())

	return status
}
