package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	app "placeshare/src/app"
)

func createPlaceRequest(t *testing.T, env *testEnv, tokenString string, fields map[string]string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()
	imageField := ""
	if withImage {
		imageField = "image"
	}
	body, contentType := multipartBody(t, fields, imageField)
	req := httptest.NewRequest(http.MethodPost, "/api/places", body)
	req.Header.Set("Content-Type", contentType)
	if tokenString != "" {
		req.Header.Set("Authorization", "Bearer "+tokenString)
	}
	return env.do(t, req)
}

func validPlaceFields() map[string]string {
	return map[string]string{
		"title":       "Eiffel Tower",
		"description": "Famous iron lattice tower",
		"address":     "Paris, France",
	}
}

func TestGetPlace(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "a@x.com")
	place := env.createPlace(t, user)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/places/"+place.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Place app.Place `json:"place"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, place.Title, resp.Place.Title)
	assert.Equal(t, user.ID, resp.Place.Creator)
}

func TestGetPlace_NotFound(t *testing.T) {
	env := newTestEnv(t)

	t.Run("unknown id", func(t *testing.T) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet,
			"/api/places/"+primitive.NewObjectID().Hex(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("malformed id", func(t *testing.T) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/places/not-an-id", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetPlacesByUser(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "a@x.com")
	env.createPlace(t, user)
	env.createPlace(t, user)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/places/user/"+user.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Places []app.Place `json:"places"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Places, 2)

	t.Run("no places is an empty list, not 404", func(t *testing.T) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet,
			"/api/places/user/"+primitive.NewObjectID().Hex(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Places)
	})
}

func TestCreatePlace(t *testing.T) {
	env := newTestEnv(t)
	user, tokenString := env.createUser(t, "a@x.com")

	rec := createPlaceRequest(t, env, tokenString, validPlaceFields(), true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Place app.Place `json:"place"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.Place.Creator)
	assert.Equal(t, env.geocoder.loc, resp.Place.Location)
	assert.NotEmpty(t, resp.Place.Image)

	owner, err := env.store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, owner.Places, resp.Place.ID)
}

func TestCreatePlace_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := createPlaceRequest(t, env, "", validPlaceFields(), true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePlace_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, tokenString := env.createUser(t, "a@x.com")

	t.Run("missing title", func(t *testing.T) {
		fields := validPlaceFields()
		delete(fields, "title")
		rec := createPlaceRequest(t, env, tokenString, fields, true)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("short description", func(t *testing.T) {
		fields := validPlaceFields()
		fields["description"] = "abc"
		rec := createPlaceRequest(t, env, tokenString, fields, true)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("missing image", func(t *testing.T) {
		rec := createPlaceRequest(t, env, tokenString, validPlaceFields(), false)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	// Validation short-circuits before any upload happens.
	assert.Empty(t, env.files.uploaded)
}

func TestCreatePlace_GeocodingFailures(t *testing.T) {
	env := newTestEnv(t)
	_, tokenString := env.createUser(t, "a@x.com")

	t.Run("address without result", func(t *testing.T) {
		env.geocoder.err = app.ErrNoResult
		rec := createPlaceRequest(t, env, tokenString, validPlaceFields(), true)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
	t.Run("provider down", func(t *testing.T) {
		env.geocoder.err = errors.New("connection refused")
		rec := createPlaceRequest(t, env, tokenString, validPlaceFields(), true)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestUpdatePlace(t *testing.T) {
	env := newTestEnv(t)
	user, tokenString := env.createUser(t, "a@x.com")
	place := env.createPlace(t, user)

	req := jsonRequest(t, http.MethodPatch, "/api/places/"+place.ID.Hex(),
		`{"title": "New title", "description": "New description"}`)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	reloaded, err := env.store.PlaceByID(context.Background(), place.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", reloaded.Title)
	assert.Equal(t, "New description", reloaded.Description)
	// Only title and description are mutable.
	assert.Equal(t, place.Address, reloaded.Address)
	assert.Equal(t, place.Creator, reloaded.Creator)
}

func TestUpdatePlace_Failures(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "a@x.com")
	_, otherToken := env.createUser(t, "b@x.com")
	place := env.createPlace(t, user)

	t.Run("non-creator", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPatch, "/api/places/"+place.ID.Hex(),
			`{"title": "Hijacked", "description": "Should not happen"}`)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		rec := env.do(t, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		reloaded, err := env.store.PlaceByID(context.Background(), place.ID)
		require.NoError(t, err)
		assert.Equal(t, place.Title, reloaded.Title)
	})
	t.Run("unknown place", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPatch, "/api/places/"+primitive.NewObjectID().Hex(),
			`{"title": "New title", "description": "New description"}`)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		rec := env.do(t, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("invalid body", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPatch, "/api/places/"+place.ID.Hex(),
			`{"title": ""}`)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		rec := env.do(t, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestDeletePlace(t *testing.T) {
	env := newTestEnv(t)
	user, tokenString := env.createUser(t, "a@x.com")
	place := env.createPlace(t, user)

	req := httptest.NewRequest(http.MethodDelete, "/api/places/"+place.ID.Hex(), nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deleted place")

	_, err := env.store.PlaceByID(context.Background(), place.ID)
	assert.Error(t, err)

	owner, err := env.store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, owner.Places)
	assert.Equal(t, []string{place.Image}, env.files.deleted)
}

func TestDeletePlace_Failures(t *testing.T) {
	env := newTestEnv(t)
	user, tokenString := env.createUser(t, "a@x.com")
	_, otherToken := env.createUser(t, "b@x.com")
	place := env.createPlace(t, user)

	t.Run("non-creator", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/places/"+place.ID.Hex(), nil)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		rec := env.do(t, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		_, err := env.store.PlaceByID(context.Background(), place.ID)
		assert.NoError(t, err)
	})
	t.Run("unknown place", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete,
			"/api/places/"+primitive.NewObjectID().Hex(), nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		rec := env.do(t, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("image removal failure does not fail the request", func(t *testing.T) {
		env.files.deleteErr = errors.New("bucket unreachable")
		req := httptest.NewRequest(http.MethodDelete, "/api/places/"+place.ID.Hex(), nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		rec := env.do(t, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
