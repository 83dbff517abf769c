package services

import (
	"time"

	"github.com/groupforms/backend/internal/models"
	"github.com/groupforms/backend/pkg/logger"
	"gorm.io/gorm"
)

type AuditEntry struct {
	Action       string
	ResourceType string
	ResourceID   *uint
	Details      map[string]interface{}
	IPAddress    string
	RequestID    string
}

// AuditService records successful mutations off the request path. Rows
// are queued to a single background writer; when the queue is full the
// entry is dropped with a warning rather than blocking the request.
type AuditService struct {
	DB    *gorm.DB
	queue chan models.AuditLog
}

func NewAuditService(db *gorm.DB) *AuditService {
	s := &AuditService{
		DB:    db,
		queue: make(chan models.AuditLog, 1000),
	}
	go s.processQueue()
	return s
}

func (s *AuditService) LogAsync(entry AuditEntry) {
	row := models.AuditLog{
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		CreatedAt:    time.Now().UTC(),
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

func (s *AuditService) processQueue() {
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
		}
	}
}
