package httpx

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/safemesh/mesh-console/internal/domain/model"
	"github.com/safemesh/mesh-console/internal/service"
)

// ConsoleHandlers serves the console read models and privileged commands.
type ConsoleHandlers struct {
	Svc    *service.Console
	Logger *slog.Logger
}

// respond writes v as JSON or maps err to an error response.
func (h *ConsoleHandlers) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *ConsoleHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context(), ClientIDFromContext(r.Context()))
	h.respond(w, r, stats, err)
}

func (h *ConsoleHandlers) MeshStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Svc.MeshStatus(r.Context(), ClientIDFromContext(r.Context()))
	h.respond(w, r, status, err)
}

func (h *ConsoleHandlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Svc.ListAlerts(r.Context(), ClientIDFromContext(r.Context()))
	h.respond(w, r, alerts, err)
}

func (h *ConsoleHandlers) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.AcknowledgeAlert(r.Context(), ClientIDFromContext(r.Context()), r.PathValue("id"))
	h.respond(w, r, res, err)
}

func (h *ConsoleHandlers) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.ResolveAlert(r.Context(), ClientIDFromContext(r.Context()), r.PathValue("id"))
	h.respond(w, r, res, err)
}

func (h *ConsoleHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.Svc.ListUsers(r.Context(), ClientIDFromContext(r.Context()), parseUserQuery(r))
	h.respond(w, r, page, err)
}

func (h *ConsoleHandlers) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	user, err := h.Svc.ToggleUserStatus(r.Context(), ClientIDFromContext(r.Context()), r.PathValue("id"))
	h.respond(w, r, user, err)
}

// evidenceResponse pairs a device's evidence with its summary counters.
type evidenceResponse struct {
	Items   []model.Evidence      `json:"items"`
	Summary model.EvidenceSummary `json:"summary"`
}

func (h *ConsoleHandlers) ListEvidence(w http.ResponseWriter, r *http.Request) {
	q, err := parseEvidenceQuery(r)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}

	clientID := ClientIDFromContext(r.Context())
	deviceID := r.PathValue("deviceID")
	items, err := h.Svc.ListEvidence(r.Context(), clientID, deviceID, q)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	summary, err := h.Svc.EvidenceSummary(r.Context(), clientID, deviceID)
	h.respond(w, r, evidenceResponse{Items: items, Summary: summary}, err)
}

func (h *ConsoleHandlers) PreserveEvidence(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.PreserveEvidence(r.Context(), ClientIDFromContext(r.Context()), r.PathValue("id"))
	h.respond(w, r, res, err)
}

func (h *ConsoleHandlers) BehavioralScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.Svc.BehavioralScore(r.Context(), ClientIDFromContext(r.Context()), r.PathValue("deviceID"))
	h.respond(w, r, score, err)
}

// auditResponse pairs matching audit entries with the trail summary.
type auditResponse struct {
	Entries []model.AuditLogEntry `json:"entries"`
	Summary model.AuditSummary    `json:"summary"`
}

func (h *ConsoleHandlers) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	clientID := ClientIDFromContext(r.Context())
	entries, err := h.Svc.ListAuditLogs(r.Context(), clientID, r.URL.Query().Get("filter"))
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	summary, err := h.Svc.AuditSummary(r.Context(), clientID)
	h.respond(w, r, auditResponse{Entries: entries, Summary: summary}, err)
}

// ExportAuditLogs streams the filtered audit trail as a JSON attachment.
func (h *ConsoleHandlers) ExportAuditLogs(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.Svc.ExportAuditLogs(r.Context(), ClientIDFromContext(r.Context()), r.URL.Query().Get("filter"), &buf)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-log.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		return
	}
}

// simulationResponse reports the alert raised by a simulation.
type simulationResponse struct {
	Success bool        `json:"success"`
	AlertID string      `json:"alertId"`
	Alert   model.Alert `json:"alert"`
}

func (h *ConsoleHandlers) RunSimulation(w http.ResponseWriter, r *http.Request) {
	alert, err := h.Svc.RunSimulation(r.Context(), ClientIDFromContext(r.Context()))
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, simulationResponse{Success: true, AlertID: alert.ID, Alert: alert})
}
