package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/m-ce-m1/html-bot/storage"
)

// GetAttempts returns ledger rows, most recent first. Optional query
// params: topic_id, user_id, limit (default 100), offset.
func GetAttempts(c *fiber.Ctx) error {
	filters := storage.StatFilters{
		Limit:  c.QueryInt("limit", 100),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("topic_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "invalid topic_id"})
		}
		filters.TopicID = &id
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "invalid user_id"})
		}
		filters.UserID = &id
	}

	rows, err := ledger.Filtered(c.Context(), filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error fetching attempts from the database",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "count": len(rows), "attempts": rows})
}

func GetStatsSummary(c *fiber.Ctx) error {
	summary, err := ledger.Summary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error building summary",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "summary": summary})
}

// ExportStats renders the ledger as an xlsx workbook and sends it as an
// attachment. An optional topic_id narrows the export to one topic.
func ExportStats(c *fiber.Ctx) error {
	filters := storage.StatFilters{}
	if v := c.Query("topic_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "invalid topic_id"})
		}
		filters.TopicID = &id
	}

	rows, err := ledger.Filtered(c.Context(), filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	path, err := exports.WriteStats(rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error writing workbook",
			"error":   err.Error(),
		})
	}
	log.Info("stats exported via api", "rows", len(rows), "file", path)
	return c.Download(path)
}
