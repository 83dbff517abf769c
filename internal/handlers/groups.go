package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/groupforms/backend/internal/middleware"
	"github.com/groupforms/backend/internal/models"
	"github.com/groupforms/backend/internal/schema"
	"github.com/groupforms/backend/internal/services"
	"github.com/groupforms/backend/pkg/logger"
	"github.com/groupforms/backend/pkg/utils"
	"gorm.io/gorm"
)

type GroupsHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewGroupsHandler(db *gorm.DB, audit *services.AuditService) *GroupsHandler {
	return &GroupsHandler{DB: db, Audit: audit}
}

// Create persists a new group together with fresh assignment rows for
// every submitted form id. The group row and its assignments become
// visible together or not at all.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	payload, fieldErrs := schema.LoadGroup(c.Body())
	if fieldErrs != nil {
		logger.Warn("group_payload_rejected", map[string]interface{}{
			"errors": fieldErrs,
			"ip":     c.IP(),
		})
		return utils.ValidationErrors(c, fieldErrs)
	}

	group := models.Group{
		Title:           payload.Title,
		OwnerID:         payload.OwnerID,
		Date:            time.Now().UTC(),
		AssignedToForms: buildAssignments(payload.AssignedToForms),
	}
	if payload.Members != nil {
		group.Members = *payload.Members
	}
	if payload.Date != nil {
		group.Date = *payload.Date
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&group).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("group_create_conflict", err, map[string]interface{}{
				"title": payload.Title,
			})
			return utils.Error(c, fiber.StatusBadRequest, "Already exist")
		}
		logger.Error("group_create_failed", err, map[string]interface{}{
			"title": payload.Title,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group")
	}

	h.Audit.LogAsync(services.AuditEntry{
		Action:       "group.create",
		ResourceType: "group",
		ResourceID:   &group.ID,
		Details: map[string]interface{}{
			"title":      group.Title,
			"owner_id":   group.OwnerID,
			"form_count": len(group.AssignedToForms),
		},
		IPAddress: c.IP(),
		RequestID: middleware.RequestID(c),
	})

	// Created with an empty body, not the status text.
	return c.Status(fiber.StatusCreated).Send(nil)
}

// Get answers every read mode of the resource. Exactly one lookup
// strategy fires, in fixed precedence: path id, then the group_id list,
// then the owner list, then user_id membership search.
func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	if raw := c.Params("id"); raw != "" {
		id, err := schema.PositiveInt(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "Invalid URL.")
		}
		return h.getByID(c, id)
	}

	// Every recognized parameter is validated before any branch fires;
	// an unusable value anywhere rejects the whole request.
	args := c.Context().QueryArgs()
	hasGroupIDs := args.Has("group_id")
	hasOwners := args.Has("owner")
	hasUserID := args.Has("user_id")

	var (
		groupIDs []int
		owners   []int
		userID   int
		err      error
	)
	if hasGroupIDs {
		if groupIDs, err = schema.PositiveInts(queryValues(c, "group_id")); err != nil {
			return h.invalidQuery(c, "group_id")
		}
	}
	if hasOwners {
		if owners, err = schema.PositiveInts(queryValues(c, "owner")); err != nil {
			return h.invalidQuery(c, "owner")
		}
	}
	if hasUserID {
		if userID, err = schema.PositiveInt(string(args.Peek("user_id"))); err != nil {
			return h.invalidQuery(c, "user_id")
		}
	}

	switch {
	case hasGroupIDs:
		return h.listWhere(c, "id IN ?", groupIDs)
	case hasOwners:
		return h.listWhere(c, "owner_id IN ?", owners)
	case hasUserID:
		return h.getByMember(c, userID)
	default:
		return utils.Error(c, fiber.StatusBadRequest, "Invalid URL.")
	}
}

func (h *GroupsHandler) getByID(c *fiber.Ctx, id int) error {
	var group models.Group
	if err := h.DB.Preload("AssignedToForms").First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Does not exist.")
		}
		logger.Error("group_load_failed", err, map[string]interface{}{"group_id": id})
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}
	return c.Status(fiber.StatusOK).JSON(serializable(&group))
}

func (h *GroupsHandler) getByMember(c *fiber.Ctx, userID int) error {
	// Containment over the packed members encoding, not a membership
	// test: user_id 12 also matches a field holding 123.
	pattern := fmt.Sprintf("%%%d%%", userID)
	var group models.Group
	err := h.DB.Preload("AssignedToForms").
		Where("members LIKE ?", pattern).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Does not exist.")
		}
		logger.Error("group_member_search_failed", err, map[string]interface{}{"user_id": userID})
		return utils.Error(c, fiber.StatusInternalServerError, "failed searching groups")
	}
	return c.Status(fiber.StatusOK).JSON(serializable(&group))
}

func (h *GroupsHandler) listWhere(c *fiber.Ctx, condition string, ids []int) error {
	var groups []models.Group
	if err := h.DB.Preload("AssignedToForms").Where(condition, ids).Find(&groups).Error; err != nil {
		logger.Error("group_list_failed", err, map[string]interface{}{"filter": condition})
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing groups")
	}
	if len(groups) == 0 {
		return utils.Error(c, fiber.StatusNotFound, "Does not exist.")
	}
	for i := range groups {
		serializable(&groups[i])
	}
	return c.Status(fiber.StatusOK).JSON(groups)
}

func (h *GroupsHandler) invalidQuery(c *fiber.Ctx, param string) error {
	logger.Warn("group_query_rejected", map[string]interface{}{
		"param": param,
		"query": c.Context().QueryArgs().String(),
		"ip":    c.IP(),
	})
	return utils.Error(c, fiber.StatusBadRequest, "Invalid URL.")
}

// Update overwrites the target group with the validated payload. The
// submitted assignment set entirely supersedes the stored one; detached
// assignment rows stay behind in the forms table.
func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	id, err := schema.PositiveInt(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid URL.")
	}

	payload, fieldErrs := schema.LoadGroup(c.Body())
	if fieldErrs != nil {
		logger.Warn("group_payload_rejected", map[string]interface{}{
			"errors":   fieldErrs,
			"group_id": id,
			"ip":       c.IP(),
		})
		return utils.ValidationErrors(c, fieldErrs)
	}

	var group models.Group
	if err := h.DB.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "Does not exist.")
		}
		logger.Error("group_load_failed", err, map[string]interface{}{"group_id": id})
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}

	group.Title = payload.Title
	group.OwnerID = payload.OwnerID
	if payload.Members != nil {
		group.Members = *payload.Members
	}
	if payload.Date != nil {
		group.Date = *payload.Date
	}
	replacement := buildAssignments(payload.AssignedToForms)

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&group).Error; err != nil {
			return err
		}
		if len(replacement) == 0 {
			return tx.Model(&group).Association("AssignedToForms").Clear()
		}
		return tx.Model(&group).Association("AssignedToForms").Replace(&replacement)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("group_update_conflict", err, map[string]interface{}{
				"group_id": id,
				"title":    payload.Title,
			})
			return utils.Error(c, fiber.StatusBadRequest, "Already exist")
		}
		logger.Error("group_update_failed", err, map[string]interface{}{"group_id": id})
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating group")
	}

	h.Audit.LogAsync(services.AuditEntry{
		Action:       "group.update",
		ResourceType: "group",
		ResourceID:   &group.ID,
		Details: map[string]interface{}{
			"title":      group.Title,
			"owner_id":   group.OwnerID,
			"form_count": len(replacement),
		},
		IPAddress: c.IP(),
		RequestID: middleware.RequestID(c),
	})

	return c.Status(fiber.StatusOK).Send(nil)
}

// buildAssignments constructs fresh assignment rows for the submitted
// form ids. The result is never nil: a group always carries a set, even
// an empty one.
func buildAssignments(refs []schema.FormRef) []models.FormAssignment {
	assignments := make([]models.FormAssignment, 0, len(refs))
	for _, ref := range refs {
		assignments = append(assignments, models.FormAssignment{FormID: ref.FormID})
	}
	return assignments
}

func serializable(group *models.Group) *models.Group {
	if group.AssignedToForms == nil {
		group.AssignedToForms = []models.FormAssignment{}
	}
	return group
}

func queryValues(c *fiber.Ctx, key string) []string {
	raw := c.Context().QueryArgs().PeekMulti(key)
	values := make([]string, 0, len(raw))
	for _, value := range raw {
		values = append(values, string(value))
	}
	return values
}
