// api/controller/group_controller.go
package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/service"
	"github.com/strafeup/permissions/api/util"
	helper_util "github.com/strafeup/permissions/api/util/helper"
)

type GroupController struct {
	groupService service.IGroupService
}

func NewGroupController(groupService service.IGroupService) *GroupController {
	return &GroupController{
		groupService: groupService,
	}
}

// RegisterRoutes registers the API routes for groups
func (gc *GroupController) RegisterRoutes(r *gin.RouterGroup) {
	groups := r.Group("/groups")
	{
		groups.GET("/:id/permissions", gc.GetGroupPermissions)
		groups.DELETE("/:id", gc.DeleteGroup)
	}
}

// GetGroupPermissions endpoint
func (gc *GroupController) GetGroupPermissions(c *gin.Context) {
	groupID, err := helper_util.GetIDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid group id", fmt.Errorf("%v: %w", err, perm_errors.ErrInvalidPermissionData))
		return
	}

	permissions, err := gc.groupService.GetGroupPermissions(c, groupID)
	if err != nil {
		util.RespondWithError(c, statusFor(err), "Failed to get group permissions", err)
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// DeleteGroup endpoint
func (gc *GroupController) DeleteGroup(c *gin.Context) {
	groupID, err := helper_util.GetIDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid group id", fmt.Errorf("%v: %w", err, perm_errors.ErrInvalidPermissionData))
		return
	}
	deleterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := gc.groupService.DeleteGroup(c, groupID, deleterID); err != nil {
		util.RespondWithError(c, statusFor(err), "Failed to delete group", err)
		return
	}

	c.Status(http.StatusNoContent)
}
