package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/m-ce-m1/html-bot/exporter"
	"github.com/m-ce-m1/html-bot/logger"
	"github.com/m-ce-m1/html-bot/storage"
	"github.com/m-ce-m1/html-bot/util"
)

var (
	settings *util.Settings
	log      *logger.Logger
	topics   *storage.QuestionStore
	ledger   *storage.AttemptLedger
	exports  *exporter.Exporter
)

// Init wires the handler dependencies once at startup, before routes are
// registered.
func Init(s *util.Settings, l *logger.Logger, t *storage.QuestionStore, a *storage.AttemptLedger, e *exporter.Exporter) {
	settings = s
	log = l
	topics = t
	ledger = a
	exports = e
}

func HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success"})
}

// LoginAdmin exchanges the configured admin credentials for a JWT. The
// token is returned in the body and also set as a cookie for browser use.
func LoginAdmin(c *fiber.Ctx) error {
	validate := validator.New()
	loginObject := new(struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	})
	if err := c.BodyParser(loginObject); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	if err := validate.Struct(loginObject); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if settings.AdminEmail == "" || loginObject.Email != settings.AdminEmail {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(settings.AdminPasswordHash), []byte(loginObject.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "invalid credentials"})
	}

	token, err := util.JwtGenerate(loginObject.Email, "admin", settings.JWTSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "internal server error"})
	}
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(72 * time.Hour),
		HTTPOnly: true,
	})
	log.Info("admin logged in", "email", loginObject.Email)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "token": token})
}
