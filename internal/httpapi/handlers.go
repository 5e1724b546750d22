package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ringr-platform/internal/accounts"
	"ringr-platform/internal/analytics"
	"ringr-platform/internal/auth"
	"ringr-platform/internal/calls"
	"ringr-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Calls     calls.Reader
	Analytics *analytics.Service
	Accounts  *accounts.Service
}

// --- Auth ---

type loginRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.OrganizationID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, organization_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.OrganizationID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

const defaultCallListLimit = 50

func (h Handlers) ListCalls(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	limit := defaultCallListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be 1..200"})
			return
		}
		limit = n
	}

	list, err := h.Calls.ListRecent(c.Request.Context(), organizationID, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": list})
}

func (h Handlers) GetCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}
	callID := c.Param("call_id")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id required"})
		return
	}

	call, err := h.Calls.GetByID(c.Request.Context(), organizationID, callID)
	if err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}

	resp := gin.H{"call": call}
	if tr, err := h.Calls.GetTranscript(c.Request.Context(), call.ID); err == nil {
		resp["transcript"] = tr.Messages
	}
	c.JSON(http.StatusOK, resp)
}

// --- Analytics ---

// AnalyticsSummary aggregates daily rollups over an inclusive date range.
// Defaults to the trailing 30 days when from/to are omitted.
func (h Handlers) AnalyticsSummary(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
	}

	summary, err := h.Analytics.RangeSummary(c.Request.Context(), organizationID, from, to)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- Account ---

func (h Handlers) AccountStatus(c *gin.Context) {
	if h.Accounts == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "accounts not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	st, err := h.Accounts.Status(c.Request.Context(), organizationID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "status lookup failed"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// Convenience middleware bundles.

func RequireOrganizationAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireOrganization(), rbac.RequireAnyRole(roles...)}
}
