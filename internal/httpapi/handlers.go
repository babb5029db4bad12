package httpapi

import (
	"net/http"
	"time"

	"coldcall-crm/internal/analysis"
	"coldcall-crm/internal/audit"
	"coldcall-crm/internal/auth"
	"coldcall-crm/internal/callers"
	"coldcall-crm/internal/leads"
	"coldcall-crm/internal/rbac"
	"coldcall-crm/internal/session"
	"coldcall-crm/internal/stats"
	"coldcall-crm/internal/transcripts"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth        *auth.Manager
	Callers     *callers.Service
	Sessions    *session.Service
	Leads       *leads.Service
	Stats       *stats.Service
	Transcripts *transcripts.Service
	Analysis    *analysis.Service
	Audit       *audit.Service
}

// --- Auth ---

type loginRequest struct {
	Email string `json:"email"`
}

// Login issues a JWT token pair for a directory profile.
//
// NOTE: Credential verification is delegated to the identity provider in
// front of this API; this endpoint maps an authenticated email to a profile
// and mints internal tokens.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}

	profile, err := h.Callers.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !profile.IsActive {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "profile deactivated"})
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), profile.ID, profile.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"profile":       profile,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a fresh pair. The profile is
// re-read so a deactivation or role change takes effect on rotation.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}

	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	profile, err := h.Callers.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !profile.IsActive {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "profile deactivated"})
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), profile.ID, profile.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (h Handlers) Me(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	profile, err := h.Callers.Get(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// --- Sessions ---

// StartSession opens a work session for the authenticated caller. Any session
// the caller still has open is closed first.
func (h Handlers) StartSession(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	sess, err := h.Sessions.Start(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// ownedSession loads a session and checks it belongs to the authenticated
// caller. Admins may act on any session. On failure the request is aborted
// and ok is false.
func (h Handlers) ownedSession(c *gin.Context, id string) (session.WorkSession, bool) {
	sess, err := h.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return session.WorkSession{}, false
	}
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return session.WorkSession{}, false
	}
	role, _ := auth.Role(c.Request.Context())
	if sess.CallerID != uid && !rbac.IsAdmin(role) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return session.WorkSession{}, false
	}
	return sess, true
}

// EndSession closes an open session with the client's final counters.
func (h Handlers) EndSession(c *gin.Context) {
	var counts session.FinalCounts
	if err := c.ShouldBindJSON(&counts); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := c.Param("session_id")
	if _, ok := h.ownedSession(c, id); !ok {
		return
	}
	sess, err := h.Sessions.End(c.Request.Context(), id, counts)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type recordCallRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

// RecordSessionCall bumps an open session's counters after a finished call:
// one more lead worked, its duration added.
func (h Handlers) RecordSessionCall(c *gin.Context) {
	var req recordCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := c.Param("session_id")
	if _, ok := h.ownedSession(c, id); !ok {
		return
	}
	if err := h.Sessions.IncrementLeadsCompleted(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.Sessions.AddCallDuration(c.Request.Context(), id, req.DurationSeconds); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// GetSession returns one session with its duration as currently accounted:
// recorded span when closed, capped elapsed time when still open.
func (h Handlers) GetSession(c *gin.Context) {
	sess, ok := h.ownedSession(c, c.Param("session_id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":          sess,
		"duration_seconds": int(h.Sessions.Duration(sess, time.Now().UTC()).Seconds()),
	})
}

// SessionHistory lists the authenticated caller's sessions.
func (h Handlers) SessionHistory(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	history, err := h.Sessions.History(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// --- Leads ---

// MyQueue returns the authenticated caller's assigned leads in queue order.
func (h Handlers) MyQueue(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	queue, err := h.Leads.QueueFor(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

// Callbacks returns leads that were attempted but not answered.
func (h Handlers) Callbacks(c *gin.Context) {
	list, err := h.Leads.Callbacks(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetLead(c *gin.Context) {
	l, err := h.Leads.Get(c.Request.Context(), c.Param("lead_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

type completeLeadRequest struct {
	Result          leads.CallResult `json:"result"`
	DurationSeconds int              `json:"duration_seconds"`
	Notes           string           `json:"notes"`
	SessionID       string           `json:"session_id,omitempty"`
}

// CompleteLead records a call outcome on a pending lead. When the request
// names the caller's open session, its counters are bumped too; session
// accounting failures do not roll back the lead outcome.
func (h Handlers) CompleteLead(c *gin.Context) {
	var req completeLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	l, err := h.Leads.Complete(c.Request.Context(), c.Param("lead_id"), req.Result, req.DurationSeconds, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sessionUpdated := false
	if req.SessionID != "" {
		uid, _ := auth.UserID(c.Request.Context())
		// Counters only move on the caller's own session.
		if sess, err := h.Sessions.Get(c.Request.Context(), req.SessionID); err == nil && sess.CallerID == uid {
			if err := h.Sessions.IncrementLeadsCompleted(c.Request.Context(), req.SessionID); err == nil {
				_ = h.Sessions.AddCallDuration(c.Request.Context(), req.SessionID, req.DurationSeconds)
				sessionUpdated = true
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"lead": l, "session_updated": sessionUpdated})
}

type transcribeRequest struct {
	RecordingURL string `json:"recording_url"`
}

// TranscribeLead submits a call recording for transcription and attaches the
// finished transcript to the lead. The request blocks until the provider
// finishes or the poll attempts run out.
func (h Handlers) TranscribeLead(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	transcript, err := h.Transcripts.Process(c.Request.Context(), c.Param("lead_id"), req.RecordingURL)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}

// --- Admin ---

type importRequest struct {
	Rows []leads.NewLead `json:"rows"`
}

// ImportLeads distributes a parsed batch round-robin across active callers.
// The import is all-or-nothing.
func (h Handlers) ImportLeads(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	batch, err := h.Leads.Import(c.Request.Context(), req.Rows)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if h.Audit != nil {
		uid, _ := auth.UserID(c.Request.Context())
		role, _ := auth.Role(c.Request.Context())
		// Best-effort: an audit failure never fails the import.
		_ = h.Audit.LogLeadImport(c.Request.Context(), uid, role, c.ClientIP(), len(batch))
	}

	c.JSON(http.StatusCreated, gin.H{"imported": len(batch), "leads": batch})
}

// AnalyzeCallerPatterns reviews a caller's transcribed calls through the LLM
// gateway and returns what works and what fails in their approach.
func (h Handlers) AnalyzeCallerPatterns(c *gin.Context) {
	id := c.Param("caller_id")
	if _, err := h.Callers.Get(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	report, err := h.Analysis.AnalyzeCaller(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AdminStats returns the global dashboard plus the per-caller breakdown.
func (h Handlers) AdminStats(c *gin.Context) {
	out, err := h.Stats.Overview(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateCaller(c *gin.Context) {
	var req callers.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	created, err := h.Callers.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Handlers) ListCallers(c *gin.Context) {
	list, err := h.Callers.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// SetCallerActive toggles whether a profile participates in distribution.
func (h Handlers) SetCallerActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "active required"})
		return
	}
	id := c.Param("caller_id")
	if err := h.Callers.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		abortWithError(c, err)
		return
	}

	if h.Audit != nil {
		uid, _ := auth.UserID(c.Request.Context())
		role, _ := auth.Role(c.Request.Context())
		msg := "deactivated caller"
		if *req.Active {
			msg = "activated caller"
		}
		_ = h.Audit.LogAdminAction(c.Request.Context(), uid, role, c.ClientIP(), msg, id)
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// SweepSessions runs one orphan-sweep pass on demand. The scheduled sweep in
// the API process covers normal operation; this endpoint exists for ops.
func (h Handlers) SweepSessions(c *gin.Context) {
	closed, err := h.Sessions.ReapOrphans(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if h.Audit != nil && closed > 0 {
		_ = h.Audit.LogOrphanSweep(c.Request.Context(), closed)
	}
	c.JSON(http.StatusOK, gin.H{"closed": closed})
}
