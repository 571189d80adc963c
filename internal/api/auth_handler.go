package api

import (
	"net/http"

	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService    service.AuthService
	profileService service.ProfileService
	log            logging.Logger
}

func NewAuthHandler(as service.AuthService, ps service.ProfileService, log logging.Logger) *AuthHandler {
	return &AuthHandler{authService: as, profileService: ps, log: log}
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a coach or student and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "User Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, account, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	avatarURL := h.profileService.AvatarURL(c.Request.Context(), account.AvatarKey)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: MapAccountToResponse(account, avatarURL)})
}

// SendVerificationCode godoc
// @Summary Send an e-mail verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SendVerificationRequest true "E-mail to verify"
// @Success 202 {object} map[string]string
// @Failure 409 {object} map[string]string "E-mail already registered"
// @Failure 429 {object} map[string]string "Resend cooldown"
// @Router /auth/verify-email/send [post]
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var req SendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.SendVerificationCode(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Verification code sent"})
}

// ConfirmVerificationCode godoc
// @Summary Confirm an e-mail verification code
// @Description Exchanges a valid code for a short-lived verification token used at registration.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ConfirmVerificationRequest true "E-mail and code"
// @Success 200 {object} VerificationTokenResponse
// @Failure 400 {object} map[string]string "Invalid or expired code"
// @Router /auth/verify-email/confirm [post]
func (h *AuthHandler) ConfirmVerificationCode(c *gin.Context) {
	var req ConfirmVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := h.authService.ConfirmVerificationCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, VerificationTokenResponse{VerificationToken: token})
}

// Register godoc
// @Summary Register a new student
// @Description Creates a student account bound to the coach who issued the invite code.
// @Tags auth
// @Accept json
// @Produce json
// @Param student body RegisterRequest true "Student details"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} map[string]string "Invalid input or invite code"
// @Failure 409 {object} map[string]string "E-mail in use or invite already used"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, account, err := h.authService.RegisterStudent(c.Request.Context(), service.RegisterStudentInput{
		Email:             req.Email,
		Password:          req.Password,
		Name:              req.Name,
		InviteCode:        req.InviteCode,
		VerificationToken: req.VerificationToken,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{Token: token, User: MapAccountToResponse(account, "")})
}
