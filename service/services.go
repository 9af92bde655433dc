// api/service/services.go
package service

//go:generate mockgen -destination=../test/service_mock/service_mock.go -package=mock_service github.com/strafeup/permissions/api/service IPermissionService,IGroupService,IAuditService

import (
	"github.com/strafeup/permissions/api/audit"
	"github.com/strafeup/permissions/api/dao"
	"github.com/strafeup/permissions/api/observability"
	"github.com/strafeup/permissions/api/pdp/engine"
	"github.com/strafeup/permissions/api/structure"
	"github.com/strafeup/permissions/api/util"
)

type Services struct {
	Permission IPermissionService
	Group      IGroupService
	Audit      IAuditService
}

func InitializeServices(
	permissionStore dao.PermissionStore,
	users dao.UserDirectory,
	groups dao.GroupDirectory,
	provider structure.Provider,
	evaluator *engine.Evaluator,
	locker Locker,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	metrics *observability.Metrics,
) (*Services, error) {
	services := &Services{
		Permission: NewPermissionService(PermissionServiceDeps{
			PermissionStore: permissionStore,
			Users:           users,
			Groups:          groups,
			Structure:       provider,
			Evaluator:       evaluator,
			ValidationUtil:  validationUtil,
			Locker:          locker,
			AuditService:    auditService,
			NotificationSvc: notificationSvc,
			EventBus:        eventBus,
			Metrics:         metrics,
		}),
		Group: NewGroupService(groups, users, permissionStore, evaluator, auditService, notificationSvc, eventBus),
		Audit: NewAuditService(users, evaluator, auditService),
	}

	return services, nil
}
