package app

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// runPhase is the coarse lifecycle of one invocation, as reported by the
// health endpoint.
type runPhase string

const (
	phaseIdle     runPhase = "idle"
	phaseRunning  runPhase = "running"
	phaseFinished runPhase = "finished"
	phaseFailed   runPhase = "failed"
)

// healthStatus is the payload served on /health: which pipeline is loaded
// and how far the current invocation has progressed.
type healthStatus struct {
	Phase      runPhase `json:"phase"`
	Project    string   `json:"project,omitempty"`
	Experiment string   `json:"experiment,omitempty"`
	Steps      []string `json:"steps"`
}

func (a *App) setPhase(p runPhase) {
	a.phaseMu.Lock()
	a.phase = p
	a.phaseMu.Unlock()
}

// healthHandler reports the pipeline and the invocation phase, so a probe
// can tell a hung container from one that is still training.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)

	a.phaseMu.Lock()
	status := healthStatus{Phase: a.phase}
	a.phaseMu.Unlock()

	if a.config.Pipeline != nil {
		status.Project = a.config.Pipeline.ProjectName
		status.Experiment = a.config.Pipeline.ExperimentName
	}
	for _, s := range a.config.Steps {
		status.Steps = append(status.Steps, s.ID())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		a.logger.Warn("Failed to write health response.", "error", err)
	}
}

// startHealthcheckServer serves /health in the background for the lifetime
// of the process. Long sweeps run in containers; this is their liveness
// probe.
func (a *App) startHealthcheckServer(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("🩺 Health check server listening.", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Health check server failed.", "error", err)
		}
	}()
}
