package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/snipper-app/snipper/app/dto"
	businessflow "github.com/snipper-app/snipper/business_flow"
	"github.com/snipper-app/snipper/config"
	"github.com/snipper-app/snipper/utils"
)

// ShortLinkHandlerInterface defines the contract for public short link resolution
type ShortLinkHandlerInterface interface {
	Visit(c fiber.Ctx) error
	VerifyPassword(c fiber.Ctx) error
}

type ShortLinkHandler struct {
	flow      businessflow.ResolverFlow
	geoCfg    config.GeoConfig
	validator *validator.Validate
}

func NewShortLinkHandler(flow businessflow.ResolverFlow, geoCfg config.GeoConfig) ShortLinkHandlerInterface {
	return &ShortLinkHandler{
		flow:      flow,
		geoCfg:    geoCfg,
		validator: validator.New(),
	}
}

// Visit resolves a short code and redirects to its destination
// @Summary Visit Short Link
// @Tags ShortLinks
// @Produce json
// @Param code path string true "Short code"
// @Success 302 {string} string "Redirect"
// @Failure 404 {object} any
// @Failure 500 {object} any
// @Router /{code} [get]
func (h *ShortLinkHandler) Visit(c fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	}

	outcome, err := h.flow.Resolve(h.createRequestContext(c, "/"+code), code, h.clientMetadata(c))
	if err != nil {
		log.Println("Resolve short link failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	switch outcome.Decision {
	case businessflow.DecisionRedirect:
		return c.Redirect().Status(fiber.StatusFound).To(outcome.DestinationURL)
	case businessflow.DecisionPasswordRequired:
		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "This short link is password protected",
			Data: dto.PasswordRequiredResponse{
				ShortCode:         outcome.ShortCode,
				PasswordProtected: true,
			},
		})
	default:
		// Expired links are indistinguishable from unknown codes
		return c.Status(fiber.StatusNotFound).SendString("not found")
	}
}

// VerifyPassword checks a submitted password and returns the destination on success
// @Summary Verify Short Link Password
// @Tags ShortLinks
// @Accept json
// @Produce json
// @Param code path string true "Short code"
// @Param request body dto.VerifyPasswordRequest true "Password payload"
// @Success 200 {object} dto.APIResponse{data=dto.VerifyPasswordResponse} "Verified"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid short link or password"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /{code}/password [post]
func (h *ShortLinkHandler) VerifyPassword(c fiber.Ctx) error {
	code := c.Params("code")

	var req dto.VerifyPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   dto.ErrorDetail{Code: "INVALID_REQUEST", Details: err.Error()},
		})
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{
			Success: false,
			Message: "Validation failed",
			Error:   dto.ErrorDetail{Code: "VALIDATION_ERROR", Details: validationErrors},
		})
	}

	outcome, err := h.flow.VerifyPassword(h.createRequestContext(c, "/"+code+"/password"), code, req.Password, h.clientMetadata(c))
	if err != nil {
		log.Println("Verify short link password failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to verify password",
			Error:   dto.ErrorDetail{Code: "PASSWORD_VERIFY_FAILED"},
		})
	}

	if !outcome.Success {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: outcome.Message,
			Error:   dto.ErrorDetail{Code: "INVALID_PASSWORD"},
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Password verified",
		Data:    dto.VerifyPasswordResponse{DestinationURL: outcome.DestinationURL},
	})
}

func (h *ShortLinkHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.Referrer = c.Get("Referer")
	metadata.EdgeCountry = c.Get(h.geoCfg.CountryHeader)
	metadata.EdgeCity = c.Get(h.geoCfg.CityHeader)
	metadata.RequestID = c.Get("X-Request-ID")
	return metadata
}

func (h *ShortLinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *ShortLinkHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
