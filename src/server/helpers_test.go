package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	app "placeshare/src/app"
	cfg "placeshare/src/configuration"
	db "placeshare/src/repository"
	token "placeshare/src/token"
)

type stubGeocoder struct {
	loc app.Location
	err error
}

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (app.Location, error) {
	if s.err != nil {
		return app.Location{}, s.err
	}
	return s.loc, nil
}

type stubFiles struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (s *stubFiles) UploadFile(ctx context.Context, name string, object io.Reader, size int64, contentType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	url := "http://files.test/placeshare/" + name
	s.uploaded = append(s.uploaded, url)
	return url, nil
}

func (s *stubFiles) DeleteFile(ctx context.Context, fileURL string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, fileURL)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	store    *db.MemoryStore
	files    *stubFiles
	geocoder *stubGeocoder
	tokens   *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config := &cfg.Properties{
		Server: cfg.HttpServerProperties{
			AllowedOrigin:  "http://localhost:3000",
			MaxUploadBytes: 1 << 20,
		},
		Auth: cfg.AuthProperties{
			Secret:   "test_secret",
			TokenTTL: time.Hour,
			Issuer:   "placeshare-test",
		},
	}
	env := &testEnv{
		store:    db.NewMemoryStore(),
		files:    &stubFiles{},
		geocoder: &stubGeocoder{loc: app.Location{Lat: 48.8589, Lng: 2.3469}},
		tokens:   token.NewService(config.Auth),
	}
	env.router = NewRouter(config, env.store, env.files, env.geocoder, env.tokens, zap.NewNop())
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// createUser inserts a user directly into the store and returns it together
// with a valid bearer token.
func (e *testEnv) createUser(t *testing.T, email string) (*app.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &app.User{
		Name:     "Max",
		Email:    email,
		Password: string(hashed),
		Image:    "http://files.test/placeshare/images/avatar.png",
	}
	require.NoError(t, e.store.InsertUser(context.Background(), user))

	signed, err := e.tokens.Generate(user.ID.Hex(), user.Email)
	require.NoError(t, err)
	return user, signed
}

// createPlace inserts a place for the user directly into the store.
func (e *testEnv) createPlace(t *testing.T, user *app.User) *app.Place {
	t.Helper()
	place := &app.Place{
		Title:       "Eiffel Tower",
		Description: "Iron lattice tower",
		Address:     "Paris, France",
		Location:    app.Location{Lat: 48.8589, Lng: 2.3469},
		Image:       "http://files.test/placeshare/images/tower.png",
		Creator:     user.ID,
	}
	require.NoError(t, e.store.CreatePlace(context.Background(), place))
	return place
}

// multipartBody builds a multipart form with the given fields and, when
// imageField is set, a small fake image file.
func multipartBody(t *testing.T, fields map[string]string, imageField string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if imageField != "" {
		fw, err := writer.CreateFormFile(imageField, "photo.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake png bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
