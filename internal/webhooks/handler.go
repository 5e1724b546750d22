package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ringr-platform/internal/agents"
	"ringr-platform/internal/audit"
	"ringr-platform/internal/calls"
	"ringr-platform/internal/voice"
	"ringr-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AdmissionChecker reports whether a tenant may currently accept calls.
type AdmissionChecker interface {
	CanMakeCalls(ctx context.Context, organizationID string) (bool, error)
}

// Handler is the voice webhook ingress.
//
// Request sequence (strict order; the signature check precedes any parsing
// of trust-sensitive content):
//  1. resolve provider from the query string (default provider if absent)
//  2. resolve the adapter; unknown provider -> 400, body untouched
//  3. read the exact raw body bytes
//  4. extract the signature from the adapter's header candidates
//  5. verify; failure -> 401
//  6. validate JSON; malformed -> 400
//  7. parse to a canonical event; nil -> 200 acknowledge-and-skip
//  8. attribute the tenant via the provider agent id; unknown -> 200 drop
//  9. on call.started, consult call admission (observability only; the
//     provider's webhook is never rejected for a locked tenant)
// 10. dispatch to accounting
//
// Attribution misses are acknowledged with 200 so well-behaved providers do
// not retry events that can never succeed. Processing errors return 500 and
// rely on provider retry; the dedup guard claim is released first so the
// retry is not rejected as a duplicate.
type Handler struct {
	Registry *voice.Registry
	Agents   agents.Repository
	Calls    *calls.Service

	// Accounts is optional; without it the admission check is skipped.
	Accounts AdmissionChecker
	// Audit is optional best-effort delivery logging.
	Audit *audit.Service
	// Guard is the fast-path dedup; NoopGuard when Redis is absent.
	Guard Guard

	DefaultProvider string
}

func (h Handler) HandleVoiceWebhook(c *gin.Context) {
	log := logger.FromGin(c)
	ctx := c.Request.Context()

	provider := c.Query("provider")
	if provider == "" {
		provider = h.DefaultProvider
	}

	adapter := h.Registry.Resolve(provider)
	if adapter == nil {
		log.Warn("unknown voice provider", "provider", provider)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := ""
	for _, name := range adapter.SignatureHeaders() {
		if v := c.GetHeader(name); v != "" {
			signature = v
			break
		}
	}

	if !adapter.VerifySignature(rawBody, signature) {
		log.Warn("webhook signature verification failed", "provider", provider)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	if !json.Valid(rawBody) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ev, err := adapter.ParseWebhook(rawBody, c.Request.Header)
	if err != nil {
		log.Warn("webhook parse failed", "provider", provider, "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if ev == nil {
		// Event type not relevant; acknowledge so the provider does not retry.
		h.record(ctx, audit.Delivery{Provider: provider, Disposition: audit.DispositionSkipped})
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	ref, err := h.Agents.FindByProviderAgentID(ctx, ev.Call.AgentExternalID)
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			log.Warn("agent not found for provider agent id, dropping",
				"provider", provider, "agent_external_id", ev.Call.AgentExternalID)
			h.record(ctx, audit.Delivery{
				Provider:       provider,
				EventType:      string(ev.Type),
				ExternalCallID: ev.Call.CallID,
				Disposition:    audit.DispositionDropped,
				Message:        "unknown agent",
			})
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.fail(c, provider, ev, "", err)
		return
	}

	if ev.Type == voice.EventCallStarted && h.Accounts != nil {
		can, err := h.Accounts.CanMakeCalls(ctx, ref.OrganizationID)
		if err != nil {
			log.Warn("call admission check failed", "organization_id", ref.OrganizationID, "err", err)
		} else if !can {
			// Call handling is provider-side; this is an alerting hook,
			// not a gate. The webhook is still processed.
			log.Warn("organization cannot make calls, locked or over limit",
				"organization_id", ref.OrganizationID)
			h.record(ctx, audit.Delivery{
				OrganizationID: ref.OrganizationID,
				Provider:       provider,
				EventType:      string(ev.Type),
				ExternalCallID: ev.Call.CallID,
				Disposition:    audit.DispositionProcessed,
				Message:        "admission check: locked",
			})
		}
	}

	dedupKey := ""
	if ev.Call.CallID != "" {
		dedupKey = ref.OrganizationID + ":" + ev.Call.CallID + ":" + string(ev.Type)
		claimed, err := h.guard().Claim(ctx, dedupKey)
		if err != nil {
			// Redis being down must not reject provider traffic; the
			// database guards still hold.
			log.Warn("dedup claim failed, continuing", "err", err)
		} else if !claimed {
			log.Info("duplicate webhook delivery, acknowledging",
				"provider", provider, "external_call_id", ev.Call.CallID, "event_type", string(ev.Type))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
	}

	if err := h.Calls.Apply(ctx, ref, ev); err != nil {
		if dedupKey != "" {
			h.guard().Release(ctx, dedupKey)
		}
		h.fail(c, provider, ev, ref.OrganizationID, err)
		return
	}

	h.record(ctx, audit.Delivery{
		OrganizationID: ref.OrganizationID,
		Provider:       provider,
		EventType:      string(ev.Type),
		ExternalCallID: ev.Call.CallID,
		Disposition:    audit.DispositionProcessed,
	})
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h Handler) fail(c *gin.Context, provider string, ev *voice.WebhookEvent, organizationID string, err error) {
	logger.FromGin(c).Error("voice webhook processing failed", "provider", provider, "err", err)
	h.record(c.Request.Context(), audit.Delivery{
		OrganizationID: organizationID,
		Provider:       provider,
		EventType:      string(ev.Type),
		ExternalCallID: ev.Call.CallID,
		Disposition:    audit.DispositionFailed,
		Message:        err.Error(),
	})
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h Handler) record(ctx context.Context, d audit.Delivery) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(ctx, d); err != nil {
		logger.From(ctx).Warn("webhook audit write failed", "err", err)
	}
}

func (h Handler) guard() Guard {
	if h.Guard == nil {
		return NoopGuard{}
	}
	return h.Guard
}
