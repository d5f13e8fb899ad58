package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	app "placeshare/src/app"
	cfg "placeshare/src/configuration"
	db "placeshare/src/repository"
)

type (
	PlacesHandler struct {
		store     db.DataStore
		files     app.FileStorage
		geocoder  app.Geocoder
		maxUpload int64
		log       *zap.Logger
	}

	CreatePlaceForm struct {
		Title       string `form:"title" binding:"required"`
		Description string `form:"description" binding:"required,min=5"`
		Address     string `form:"address" binding:"required"`
	}

	UpdatePlaceBody struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required,min=5"`
	}
)

func NewPlacesHandler(config *cfg.Properties, store db.DataStore, files app.FileStorage, geocoder app.Geocoder, log *zap.Logger) *PlacesHandler {
	return &PlacesHandler{
		store:     store,
		files:     files,
		geocoder:  geocoder,
		maxUpload: config.Server.MaxUploadBytes,
		log:       log,
	}
}

// GetPlace returns a single place by its id.
func (h *PlacesHandler) GetPlace(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("pid"))
	if err != nil {
		respondError(c, errNotFound("could not find a place for the provided id"))
		return
	}
	place, err := h.store.PlaceByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, errNotFound("could not find a place for the provided id"))
			return
		}
		h.log.Error("can not fetch place", zap.Error(err))
		respondError(c, errInternal("something went wrong, could not find a place"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"place": place})
}

// GetPlacesByUser returns the (possibly empty) list of places a user created.
func (h *PlacesHandler) GetPlacesByUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"places": []app.Place{}})
		return
	}
	places, err := h.store.PlacesByCreator(c.Request.Context(), id)
	if err != nil {
		h.log.Error("can not list places", zap.Error(err))
		respondError(c, errInternal("fetching places failed, please try again later"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}

// CreatePlace validates the multipart form, geocodes the address, stores the
// uploaded image and persists the place together with the owner's place-list
// update.
func (h *PlacesHandler) CreatePlace(c *gin.Context) {
	var form CreatePlaceForm
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

	userID, err := authUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	location, err := h.geocoder.Geocode(ctx, form.Address)
	if err != nil {
		respondError(c, errGeocoding(err))
		return
	}

	user, err := h.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, errNotFound("could not find user for provided id"))
			return
		}
		h.log.Error("can not fetch user", zap.Error(err))
		respondError(c, errInternal("creating place failed, please try again"))
		return
	}

	imageURL, err := storeImage(ctx, h.files, file, header)
	if err != nil {
		h.log.Error("can not upload place image", zap.Error(err))
		respondError(c, errInternal("creating place failed, please try again"))
		return
	}

	place := &app.Place{
		Title:       form.Title,
		Description: form.Description,
		Address:     form.Address,
		Location:    location,
		Image:       imageURL,
		Creator:     user.ID,
	}
	if err := h.store.CreatePlace(ctx, place); err != nil {
		h.log.Error("can not create place", zap.Error(err))
		// The stored image is orphaned at this point; drop it so failed
		// creates do not leak objects.
		if delErr := h.files.DeleteFile(ctx, imageURL); delErr != nil {
			h.log.Warn("can not delete orphaned image", zap.String("image", imageURL), zap.Error(delErr))
		}
		respondError(c, errInternal("creating place failed, please try again"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"place": place})
}

// UpdatePlace lets the creator change title and description.
func (h *PlacesHandler) UpdatePlace(c *gin.Context) {
	var body UpdatePlaceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errValidation("invalid inputs passed, please check your data"))
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("pid"))
	if err != nil {
		respondError(c, errNotFound("could not find a place for the provided id"))
		return
	}
	userID, err := authUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	place, err := h.store.PlaceByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, errNotFound("could not find a place for the provided id"))
			return
		}
		h.log.Error("can not fetch place", zap.Error(err))
		respondError(c, errInternal("something went wrong, could not update place"))
		return
	}
	if place.Creator != userID {
		respondError(c, errUnauthorized("you are not allowed to edit this place"))
		return
	}

	place.Title = body.Title
	place.Description = body.Description
	if err := h.store.UpdatePlace(ctx, place); err != nil {
		h.log.Error("can not update place", zap.Error(err))
		respondError(c, errInternal("something went wrong, could not update place"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"place": place})
}

// DeletePlace removes a place, keeps the owner's place list in sync and
// best-effort deletes the stored image. A failed image removal is logged but
// never fails the request.
func (h *PlacesHandler) DeletePlace(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("pid"))
	if err != nil {
		respondError(c, errNotFound("could not find a place for the provided id"))
		return
	}
	userID, err := authUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	place, err := h.store.PlaceByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, errNotFound("could not find a place for the provided id"))
			return
		}
		h.log.Error("can not fetch place", zap.Error(err))
		respondError(c, errInternal("something went wrong, could not delete place"))
		return
	}
	if place.Creator != userID {
		respondError(c, errUnauthorized("you are not allowed to delete this place"))
		return
	}

	if err := h.store.DeletePlace(ctx, place); err != nil {
		h.log.Error("can not delete place", zap.Error(err))
		respondError(c, errInternal("something went wrong, could not delete place"))
		return
	}
	if err := h.files.DeleteFile(ctx, place.Image); err != nil {
		h.log.Warn("can not delete place image", zap.String("image", place.Image), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted place"})
}
