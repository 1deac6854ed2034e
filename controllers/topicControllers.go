package controllers

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/m-ce-m1/html-bot/storage"
)

// GetTopics returns every topic, hidden ones included.
func GetTopics(c *fiber.Ctx) error {
	list, err := topics.ListTopics(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error fetching topics from the database",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "topics": list})
}

// CreateTopic adds a hidden topic. Without an explicit limit the configured
// default applies; unlimited must be asked for explicitly.
func CreateTopic(c *fiber.Ctx) error {
	validate := validator.New()
	body := new(struct {
		Title        string `json:"title" validate:"required,min=3"`
		AttemptLimit *int   `json:"attemptLimit" validate:"omitempty,min=1"`
		Unlimited    bool   `json:"unlimited"`
	})
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	title := strings.TrimSpace(body.Title)
	existing, err := topics.GetTopicByTitle(c.Context(), title)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	if existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "topic already exists"})
	}

	limit := settings.DefaultAttemptLimit
	if body.Unlimited {
		limit = nil
	} else if body.AttemptLimit != nil {
		limit = body.AttemptLimit
	}

	topic, err := topics.CreateTopic(c.Context(), title, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error inserting topic into database",
			"error":   err.Error(),
		})
	}
	log.Info("topic created via api", "topic_id", topic.ID, "title", topic.Title)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "topic": topic})
}

// UpdateTopicAvailability shows or hides a topic.
func UpdateTopicAvailability(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "invalid topic id"})
	}

	validate := validator.New()
	body := new(struct {
		IsAvailable *bool `json:"isAvailable" validate:"required"`
	})
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := topics.SetAvailability(c.Context(), id, *body.IsAvailable); err != nil {
		if err == storage.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "topic not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}

	updated, err := topics.GetTopic(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	log.Info("topic availability updated via api", "topic_id", id, "available", *body.IsAvailable)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "topic": updated})
}

// UpdateTopicLimit sets the attempt limit. A null or absent attemptLimit
// clears it, making attempts unlimited.
func UpdateTopicLimit(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "invalid topic id"})
	}

	validate := validator.New()
	body := new(struct {
		AttemptLimit *int `json:"attemptLimit" validate:"omitempty,min=1"`
	})
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := topics.SetAttemptLimit(c.Context(), id, body.AttemptLimit); err != nil {
		if err == storage.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "topic not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}

	updated, err := topics.GetTopic(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	log.Info("topic attempt limit updated via api", "topic_id", id)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "topic": updated})
}
