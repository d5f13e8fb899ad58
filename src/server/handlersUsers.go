package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	app "placeshare/src/app"
	cfg "placeshare/src/configuration"
	db "placeshare/src/repository"
	token "placeshare/src/token"
)

type (
	UsersHandler struct {
		store     db.DataStore
		files     app.FileStorage
		tokens    *token.Service
		maxUpload int64
		log       *zap.Logger
	}

	SignupForm struct {
		Name     string `form:"name" binding:"required"`
		Email    string `form:"email" binding:"required,email"`
		Password string `form:"password" binding:"required,min=6"`
	}

	LoginBody struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
)

func NewUsersHandler(config *cfg.Properties, store db.DataStore, files app.FileStorage, tokens *token.Service, log *zap.Logger) *UsersHandler {
	return &UsersHandler{
		store:     store,
		files:     files,
		tokens:    tokens,
		maxUpload: config.Server.MaxUploadBytes,
		log:       log,
	}
}

// GetUsers lists all registered users. Password hashes never serialize.
func (h *UsersHandler) GetUsers(c *gin.Context) {
	users, err := h.store.Users(c.Request.Context())
	if err != nil {
		h.log.Error("can not list users", zap.Error(err))
		respondError(c, errInternal("fetching users failed, please try again later"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Signup registers a new user from a multipart form with a profile image and
// returns a signed token for the fresh account.
func (h *UsersHandler) Signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, errValidation("invalid inputs passed, please check your data"))
		return
	}
	file, header, apiErr := formImage(c, h.maxUpload)
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}
	defer file.Close()

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error("can not hash password", zap.Error(err))
		respondError(c, errInternal("signing up failed, please try again later"))
		return
	}

	imageURL, err := storeImage(c.Request.Context(), h.files, file, header)
	if err != nil {
		h.log.Error("can not upload profile image", zap.Error(err))
		respondError(c, errInternal("signing up failed, please try again later"))
		return
	}

	user := &app.User{
		Name:     form.Name,
		Email:    strings.ToLower(form.Email),
		Password: string(hashed),
		Image:    imageURL,
	}
	if err := h.store.InsertUser(c.Request.Context(), user); err != nil {
		if delErr := h.files.DeleteFile(c.Request.Context(), imageURL); delErr != nil {
			h.log.Warn("can not delete orphaned image", zap.String("image", imageURL), zap.Error(delErr))
		}
		if errors.Is(err, db.ErrDuplicateEmail) {
			respondError(c, errValidation("user exists already, please login instead"))
			return
		}
		h.log.Error("can not insert user", zap.Error(err))
		respondError(c, errInternal("signing up failed, please try again later"))
		return
	}

	signed, err := h.tokens.Generate(user.ID.Hex(), user.Email)
	if err != nil {
		h.log.Error("can not sign token", zap.Error(err))
		respondError(c, errInternal("signing up failed, please try again later"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"token":  signed,
	})
}

// Login checks the credentials and hands out a bearer token.
func (h *UsersHandler) Login(c *gin.Context) {
	var body LoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errValidation("invalid inputs passed, please check your data"))
		return
	}

	user, err := h.store.UserByEmail(c.Request.Context(), strings.ToLower(body.Email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, errUnauthenticated("invalid credentials, could not log you in"))
			return
		}
		h.log.Error("can not fetch user", zap.Error(err))
		respondError(c, errInternal("logging in failed, please try again later"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		respondError(c, errUnauthenticated("invalid credentials, could not log you in"))
		return
	}

	signed, err := h.tokens.Generate(user.ID.Hex(), user.Email)
	if err != nil {
		h.log.Error("can not sign token", zap.Error(err))
		respondError(c, errInternal("logging in failed, please try again later"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"token":  signed,
	})
}
