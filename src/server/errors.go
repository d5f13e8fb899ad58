package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	app "placeshare/src/app"
)

// apiError is the single error shape handlers produce. Every failure a client
// can see is one of the constructors below; respondError formats the uniform
// {"message"} body and sets the status code.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

func errValidation(message string) *apiError {
	return &apiError{Status: http.StatusUnprocessableEntity, Message: message}
}

func errUnauthenticated(message string) *apiError {
	return &apiError{Status: http.StatusUnauthorized, Message: message}
}

func errUnauthorized(message string) *apiError {
	return &apiError{Status: http.StatusUnauthorized, Message: message}
}

func errNotFound(message string) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: message}
}

func errInternal(message string) *apiError {
	return &apiError{Status: http.StatusInternalServerError, Message: message}
}

// errGeocoding translates a geocoder failure: an address the provider can not
// resolve is the client's problem, anything else is the provider's.
func errGeocoding(err error) *apiError {
	if errors.Is(err, app.ErrNoResult) {
		return &apiError{
			Status:  http.StatusUnprocessableEntity,
			Message: "could not find location for the provided address",
		}
	}
	return &apiError{
		Status:  http.StatusBadGateway,
		Message: "geocoding failed, please try again later",
	}
}

func respondError(c *gin.Context, err error) {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		apiErr = errInternal("something went wrong, please try again later")
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"message": apiErr.Message})
}
