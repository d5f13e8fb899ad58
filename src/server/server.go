package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "placeshare/src/app"
	cfg "placeshare/src/configuration"
	db "placeshare/src/repository"
	token "placeshare/src/token"
)

// NewRouter wires the handlers, middleware and static client onto a gin
// engine. Dependencies come in from the caller so tests can swap in memory
// stores and stub adapters.
func NewRouter(config *cfg.Properties, store db.DataStore, files app.FileStorage, geocoder app.Geocoder, tokens *token.Service, logger *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	pprof.Register(router)

	users := NewUsersHandler(config, store, files, tokens, logger)
	places := NewPlacesHandler(config, store, files, geocoder, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	api := router.Group("/api")
	{
		api.GET("/users", users.GetUsers)
		api.POST("/users/signup", users.Signup)
		api.POST("/users/login", users.Login)
		api.GET("/places/:pid", places.GetPlace)
		api.GET("/places/user/:uid", places.GetPlacesByUser)
	}

	protected := api.Group("/")
	protected.Use(AuthRequired(tokens))
	{
		protected.POST("/places", places.CreatePlace)
		protected.PATCH("/places/:pid", places.UpdatePlace)
		protected.DELETE("/places/:pid", places.DeletePlace)
	}

	// The single-page client.
	router.StaticFile("/", "./web/static/index.html")
	router.StaticFile("/app.js", "./web/static/app.js")
	router.StaticFile("/styles.css", "./web/static/styles.css")

	router.NoRoute(func(ctx *gin.Context) { ctx.JSON(http.StatusNotFound, gin.H{}) })
	return router
}

// RunServer connects the external collaborators and serves until the listener
// fails.
func RunServer(config *cfg.Properties, logger *zap.Logger) error {
	ctx := context.Background()

	var store db.DataStore
	if config.DB.URI == "" {
		logger.Warn("no DB_URI configured, using the in-memory store")
		store = db.NewMemoryStore()
	} else {
		mongoStore, err := db.NewMongoStore(ctx, config.DB, logger)
		if err != nil {
			return fmt.Errorf("database not respond: %w", err)
		}
		store = mongoStore
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.Warn("can not close store", zap.Error(err))
		}
	}()

	files, err := app.NewMinioS3Client(config.S3)
	if err != nil {
		return fmt.Errorf("could not connect to minio: %w", err)
	}

	geocoder := app.NewNominatimGeocoder(config.Geo)
	tokens := token.NewService(config.Auth)

	router := NewRouter(config, store, files, geocoder, tokens, logger)
	return router.Run(fmt.Sprintf(":%s", config.Server.Port))
}
