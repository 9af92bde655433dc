// api/controller/audit_controller.go
package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strafeup/permissions/api/audit"
	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/service"
	"github.com/strafeup/permissions/api/util"
	helper_util "github.com/strafeup/permissions/api/util/helper"
)

const maxAuditPageSize = 1000

type AuditController struct {
	auditService service.IAuditService
}

func NewAuditController(auditService service.IAuditService) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// RegisterRoutes registers the API routes for the audit trail
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit/", ac.GetAuditLogs)
}

// GetAuditLogs endpoint
func (ac *AuditController) GetAuditLogs(c *gin.Context) {
	actingUserID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	query, err := bindAuditQuery(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid audit query", fmt.Errorf("%v: %w", err, perm_errors.ErrInvalidQuery))
		return
	}

	logs, err := ac.auditService.QueryAuditLogs(c, actingUserID, query)
	if err != nil {
		util.RespondWithError(c, statusFor(err), "Failed to query audit logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func bindAuditQuery(c *gin.Context) (audit.Query, error) {
	var query audit.Query

	userID, _, err := helper_util.GetOptionalIDQuery(c, "user_id")
	if err != nil {
		return query, err
	}
	query.UserID = userID

	groupID, _, err := helper_util.GetOptionalIDQuery(c, "user_group_id")
	if err != nil {
		return query, err
	}
	query.UserGroupID = groupID
	query.ResourceID = c.Query("resource_id")

	if raw := c.Query("from"); raw != "" {
		if query.From, err = time.Parse(time.RFC3339, raw); err != nil {
			return query, fmt.Errorf("invalid from %q", raw)
		}
	}
	if raw := c.Query("to"); raw != "" {
		if query.To, err = time.Parse(time.RFC3339, raw); err != nil {
			return query, fmt.Errorf("invalid to %q", raw)
		}
	}

	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 || size > maxAuditPageSize {
			return query, fmt.Errorf("size must be between 1 and %d", maxAuditPageSize)
		}
		query.Size = size
	}
	return query, nil
}
