package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinecircle/cinecircle/internal/server/models"
	"github.com/cinecircle/cinecircle/internal/server/services"
)

// UserHandler serves registration, authentication, account lifecycle,
// moderation, the social graph, and profile updates.
type UserHandler struct {
	identity *services.IdentityService
	social   *services.SocialService
	profile  *services.ProfileService
	tokens   *services.TokenService
}

func NewUserHandler(identity *services.IdentityService, social *services.SocialService,
	profile *services.ProfileService, tokens *services.TokenService) *UserHandler {
	return &UserHandler{identity: identity, social: social, profile: profile, tokens: tokens}
}

// userResponse inlines the user record and attaches the signed picture URL.
type userResponse struct {
	*models.User
	SignedURL *string `json:"signedUrl"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:     "invalid request body",
		RequestID: c.GetString(ctxRequestIDKey),
	})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,credential"`
		Email    string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	user, err := h.identity.CreateUser(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	user, pair, err := h.tokens.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	pair, err := h.tokens.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, signedURL, err := h.identity.GetUserByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: user, SignedURL: signedURL})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	listings, err := h.identity.GetAllUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, userResponse{User: l.User, SignedURL: l.SignedURL})
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	ctx, userID := requestContext(c)
	if err := h.identity.DeleteUser(ctx, userID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	ctx, userID := requestContext(c)
	if err := h.identity.ChangePassword(ctx, userID, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *UserHandler) BanUser(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.identity.BanUser(c.Request.Context(), c.Param("userId"), req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "moderation status applied"})
}

func (h *UserHandler) AddFriend(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	ctx, userID := requestContext(c)
	if err := h.social.AddFriend(ctx, req.Username, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageResponse{Message: "friend added"})
}

func (h *UserHandler) FriendsList(c *gin.Context) {
	ctx, userID := requestContext(c)
	list, err := h.social.FriendsList(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateProfile accepts a multipart form: biography and preferredGenres
// text fields plus an optional profilePicture file part.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	in := services.ProfileInput{
		Biography:       c.PostForm("biography"),
		PreferredGenres: c.PostFormArray("preferredGenres"),
	}

	var upload *services.ProfileUpload
	if file, err := c.FormFile("profilePicture"); err == nil {
		f, err := file.Open()
		if err != nil {
			badRequest(c)
			return
		}
		defer f.Close()
		upload = &services.ProfileUpload{FileName: file.Filename, Content: f, Size: file.Size}
	}

	ctx, userID := requestContext(c)
	user, signedURL, err := h.profile.UpdateProfile(ctx, userID, in, upload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: user, SignedURL: signedURL})
}
