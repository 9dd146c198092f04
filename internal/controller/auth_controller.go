package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/service"
	"github.com/rs/zerolog/log"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register godoc
// @Summary Register a new user
// @Description Create a teacher or student account and return an access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registration body dto.RegisterDTO true "Account details"
// @Success 201 {object} dto.TokenResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Register: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.authService.Register(req)
	if err != nil {
		RespondError(ctx, err, "Failed to register")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Description Exchange credentials for an access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginDTO true "Credentials"
// @Success 200 {object} dto.TokenResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.authService.Login(req)
	if err != nil {
		RespondError(ctx, err, "Failed to log in")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
