// api/controller/permission_controller.go
package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/service"
	"github.com/strafeup/permissions/api/util"
	helper_util "github.com/strafeup/permissions/api/util/helper"
)

type PermissionController struct {
	permissionService service.IPermissionService
}

func NewPermissionController(permissionService service.IPermissionService) *PermissionController {
	return &PermissionController{
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the API routes for permissions
func (pc *PermissionController) RegisterRoutes(r *gin.RouterGroup) {
	permissions := r.Group("/permissions")
	{
		permissions.GET("/", pc.GetPermissions)
		permissions.PUT("/", pc.SetPermissions)
		permissions.POST("/check/", pc.CheckPermission)
	}
}

// GetPermissions endpoint
func (pc *PermissionController) GetPermissions(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	targetID, ok, err := helper_util.GetOptionalIDQuery(c, "user_id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user_id", fmt.Errorf("%v: %w", err, perm_errors.ErrInvalidPermissionData))
		return
	}
	if ok {
		userID = targetID
	}

	view, err := pc.permissionService.GetPermissionTree(c, userID)
	if err != nil {
		util.RespondWithError(c, statusFor(err), "Failed to get permissions", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetPermissions endpoint
func (pc *PermissionController) SetPermissions(c *gin.Context) {
	var req model.SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid permission data", fmt.Errorf("%v: %w", err, perm_errors.ErrInvalidPermissionData))
		return
	}
	actingUserID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	permissions, err := pc.permissionService.SetPermissions(c, actingUserID, req)
	if err != nil {
		util.RespondWithError(c, statusFor(err), "Failed to set permissions", err)
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// CheckPermission endpoint
func (pc *PermissionController) CheckPermission(c *gin.Context) {
	var req model.CheckPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid check request", fmt.Errorf("%v: %w", err, perm_errors.ErrInvalidPermissionData))
		return
	}

	response, err := pc.permissionService.CheckPermission(c, req)
	if err != nil {
		util.RespondWithError(c, statusFor(err), "Failed to check permission", err)
		return
	}

	c.JSON(http.StatusOK, response)
}
