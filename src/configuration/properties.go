package configuration

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Properties struct {
		LogLevel string `env:"LOG_LEVEL" envDefault:"DEBUG"`

		Server HttpServerProperties `envPrefix:"HTTP_"`
		DB     DBProperties         `envPrefix:"DB_"`
		Auth   AuthProperties       `envPrefix:"AUTH_"`
		S3     S3Properties         `envPrefix:"S3_"`
		Geo    GeoProperties        `envPrefix:"GEO_"`
	}

	HttpServerProperties struct {
		Port           string        `env:"PORT" envDefault:"8088"`
		AllowedOrigin  string        `env:"ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
		ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
		MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	}

	// DBProperties configures the MongoDB connection. An empty URI makes the
	// server fall back to the in-memory store, which is only meant for
	// development and tests.
	DBProperties struct {
		URI     string        `env:"URI"`
		Name    string        `env:"NAME" envDefault:"placeshare"`
		Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	}

	AuthProperties struct {
		Secret   string        `env:"SECRET"`
		TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
		Issuer   string        `env:"ISSUER" envDefault:"placeshare"`
	}

	S3Properties struct {
		Host        string        `env:"HOST" envDefault:"localhost:9000"`
		AccessKey   string        `env:"ACCESS_KEY"`
		SecretKey   string        `env:"SECRET_KEY"`
		Bucket      string        `env:"BUCKET" envDefault:"placeshare"`
		UseSSL      bool          `env:"USE_SSL" envDefault:"false"`
		ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	}

	GeoProperties struct {
		Host        string        `env:"HOST" envDefault:"https://nominatim.openstreetmap.org"`
		UserAgent   string        `env:"USER_AGENT" envDefault:"placeshare/1.0"`
		ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	}
)

func ReadProperties() *Properties {
	config := &Properties{}

	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("read config error: %w", err))
	}
	return config
}
