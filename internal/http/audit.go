package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auditrepo "github.com/pawsitivecheck/syncconsole/internal/database/audit"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// AuditController exposes the audit log to administrators.
type AuditController struct {
	store  AuditStore
	logger *zap.Logger
}

func NewAuditController(store AuditStore, logger *zap.Logger) *AuditController {
	return &AuditController{store: store, logger: logger}
}

// List handles GET /admin/audit?type=sync&action=sync_recalls&limit=50&offset=0
func (ac *AuditController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c, 50, 500)
	if !ok {
		return
	}

	filter := auditrepo.Filter{
		Action: c.Query("action"),
		Limit:  limit,
		Offset: offset,
	}

	switch eventType := entities.AuditEventType(c.Query("type")); eventType {
	case "":
	case entities.AuditEventSync, entities.AuditEventAuth, entities.AuditEventAdmin:
		filter.EventType = eventType
	default:
		respondBadRequest(c, "invalid event type")
		return
	}

	events, total, err := ac.store.GetEvents(filter)
	if err != nil {
		respondInternalError(c, ac.logger, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, limit, offset))
}
