package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/application"
	"github.com/coursewire/coursewire/internal/interface/middleware"
	"github.com/coursewire/coursewire/pkg/helpers"
	"github.com/coursewire/coursewire/pkg/response"
	"github.com/coursewire/coursewire/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *application.UserService, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Name     string `form:"name" json:"name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

type playlistAddRequest struct {
	ID string `json:"id" binding:"required,uuid"`
}

// setToken issues the bearer token and attaches it as the response credential.
func (h *UserHandler) setToken(c *gin.Context, userID string) error {
	token, exp, err := h.JWT.Generate(userID)
	if err != nil {
		return err
	}
	h.Cookies.SetToken(c, token, exp)
	return nil
}

// Register POST /api/register (multipart: name, email, password, file)
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", validation.ToDetails(err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.setToken(c, u.ID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "registered successfully")
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.setToken(c, u.ID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, fmt.Sprintf("welcome back, %s", u.Name))
}

// Logout GET /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out successfully")
}

// Me GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	response.Success(c, http.StatusOK, u, "profile")
}

// DeleteMe DELETE /api/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if err := h.Svc.DeleteAccount(c.Request.Context(), u); err != nil {
		response.Fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "user deleted successfully")
}

// ChangePassword PUT /api/changepassword
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", validation.ToDetails(err))
		return
	}
	u := middleware.CurrentUser(c)
	if err := h.Svc.ChangePassword(c.Request.Context(), u, req.OldPassword, req.NewPassword); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed successfully")
}

// UpdateProfile PUT /api/updateprofile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u := middleware.CurrentUser(c)
	updated, err := h.Svc.UpdateProfile(c.Request.Context(), u, req.Name, req.Email)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated, "profile updated successfully")
}

// UpdateAvatar PUT /api/updateprofilepicture (multipart: file)
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "please upload a file", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	u := middleware.CurrentUser(c)
	updated, err := h.Svc.UpdateAvatar(c.Request.Context(), u, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated, "profile picture updated successfully")
}

// ForgotPassword POST /api/forgotpassword
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, fmt.Sprintf("reset token has been sent to %s", req.Email))
}

// ResetPassword PUT /api/resetpassword/:token
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed successfully")
}

// Playlist GET /api/playlist
func (h *UserHandler) Playlist(c *gin.Context) {
	u := middleware.CurrentUser(c)
	items, err := h.Svc.Playlist(c.Request.Context(), u.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "playlist")
}

// AddToPlaylist POST /api/addtoplaylist
func (h *UserHandler) AddToPlaylist(c *gin.Context) {
	var req playlistAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u := middleware.CurrentUser(c)
	if err := h.Svc.AddToPlaylist(c.Request.Context(), u, req.ID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "added to playlist")
}

// RemoveFromPlaylist DELETE /api/removefromplaylist?id=<course id>
func (h *UserHandler) RemoveFromPlaylist(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "course id is required", nil)
		return
	}
	u := middleware.CurrentUser(c)
	if err := h.Svc.RemoveFromPlaylist(c.Request.Context(), u, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "removed from playlist")
}
