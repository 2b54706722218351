package controllers

import (
	"time"

	"learnspace/backend/config"
	"learnspace/backend/models"
	"learnspace/backend/repositories"
	"learnspace/backend/security"
	"learnspace/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type AuthController struct {
	Users     *repositories.UserRepository
	Protector *security.LoginProtector
	Cfg       *config.Config
}

func NewAuthController(users *repositories.UserRepository, protector *security.LoginProtector, cfg *config.Config) *AuthController {
	return &AuthController{Users: users, Protector: protector, Cfg: cfg}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	existing, err := ac.Users.GetByUsername(input.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Username is already taken",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	account := models.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
		Role:         "learner",
	}
	if err := ac.Users.Create(&account); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create user",
		})
	}

	token, err := utils.GenerateJWTToken(account.ID, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       account.ID,
			"username": account.Username,
			"email":    account.Email,
			"role":     account.Role,
		},
	})
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the brute-force protector before touching credentials.
// A blocked attempt is answered with 429 and never reaches bcrypt.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	check := ac.Protector.Check(input.Username, c.IP())
	if check.Blocked {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":      check.Reason,
			"expires_at": check.ExpiresAt,
		})
	}

	account, err := ac.Users.GetByUsername(input.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if account == nil {
		ac.Protector.Record(input.Username, c.IP(), false)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}
	if account.IsBanned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Account is banned",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		ac.Protector.Record(input.Username, c.IP(), false)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	ac.Protector.Record(input.Username, c.IP(), true)

	token, err := utils.GenerateJWTToken(account.ID, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	// Login history is best-effort, the session is already valid.
	_ = ac.Users.RecordLogin(account.ID, c.IP(), time.Now())

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       account.ID,
			"username": account.Username,
			"email":    account.Email,
			"role":     account.Role,
		},
	})
}

func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	account, err := ac.Users.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if account == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	return utils.Success(c, fiber.StatusOK, account)
}

type UpdateProfileInput struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	account, err := ac.Users.GetByID(userID)
	if err != nil || account == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.FullName != "" {
		account.FullName = input.FullName
	}
	if input.AvatarURL != "" {
		account.AvatarURL = input.AvatarURL
	}

	if err := ac.Users.Update(account); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update user",
		})
	}
	return utils.Success(c, fiber.StatusOK, account)
}

func validationDetails(err error) map[string]string {
	details := make(map[string]string)
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	return details
}
