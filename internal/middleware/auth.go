package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"slotwise/internal/domain"
	"slotwise/internal/pkg/response"
	"slotwise/internal/repository"
)

type OrganizationReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
}

// OrganizationGuard checks that staff act inside their own organization and that it is paid up.
type OrganizationGuard struct {
	orgs OrganizationReader
	now  func() time.Time
}

func NewOrganizationGuard(orgs OrganizationReader) *OrganizationGuard {
	return &OrganizationGuard{orgs: orgs, now: time.Now}
}

// RequireActiveSubscription blocks staff features for organizations whose subscription lapsed.
func (g *OrganizationGuard) RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := OrganizationID(c)
		if orgID == 0 {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "No organization bound to this account")
			return
		}

		org, err := g.orgs.GetByID(c.Request.Context(), orgID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Organization not found")
				return
			}
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load organization")
			return
		}

		if !org.HasAccess(g.now()) {
			response.Abort(c, http.StatusPaymentRequired, "SUBSCRIPTION_INACTIVE", "Organization subscription is not active")
			return
		}
		c.Next()
	}
}

// RequireSameOrganization compares the organization id in URL param "id" with the token.
func (g *OrganizationGuard) RequireSameOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			response.Abort(c, http.StatusBadRequest, "INVALID_ID", "Invalid organization ID")
			return
		}
		if id != OrganizationID(c) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "You don't manage this organization")
			return
		}
		c.Next()
	}
}
