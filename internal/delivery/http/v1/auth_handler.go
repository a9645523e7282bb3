package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"job-board-backend/internal/delivery/http/middleware"
	"job-board-backend/internal/delivery/http/response"
	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	secureCookie bool
}

func NewAuthHandler(public *gin.RouterGroup, admin *gin.RouterGroup, authUC domain.AuthUsecase, secureCookie bool) {
	handler := &AuthHandler{authUC: authUC, secureCookie: secureCookie}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", handler.Login)
		publicAuth.GET("/session", handler.Session)
	}

	adminAuth := admin.Group("/auth")
	{
		adminAuth.POST("/logout", handler.Logout)
	}
}

// LoginRequest is checked by the usecase so a blank form gets the same 401
// envelope as bad credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"max=254"`
	Password string `json:"password" binding:"max=512"`
}

type SessionResponse struct {
	State domain.SessionState `json:"state"`
	Email string              `json:"email,omitempty"`
}

// Login godoc
// @Summary      Admin sign-in
// @Description  Returns a session token; the provider's error message is passed through verbatim
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      LoginRequest  true  "Email and password"
// @Success      200          {object}  response.Response{data=domain.Session}
// @Failure      401          {object}  response.Response
// @Failure      503          {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	session, err := h.authUC.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.AccessToken, maxAge, "/", "", h.secureCookie, true)

	response.Success(c, http.StatusOK, "Signed in", session)
}

// Logout godoc
// @Summary      Admin sign-out
// @Description  Revokes the current session token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUC.SignOut(c.Request.Context(), middleware.PrincipalFrom(c)); err != nil {
		c.Error(err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Signed out", nil)
}

// Session godoc
// @Summary      Current session state
// @Description  unknown means the server could not check; clients must not treat it as signed out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=SessionResponse}
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	state, principal, _ := h.authUC.Resolve(c.Request.Context(), middleware.BearerToken(c))

	out := SessionResponse{State: state}
	if state == domain.SessionPresent && principal != nil {
		out.Email = principal.Email
	}
	if state == domain.SessionUnknown {
		c.Header("Retry-After", "1")
	}
	response.Success(c, http.StatusOK, "Session", out)
}
