package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	app "placeshare/src/app"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a user with the email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// DataStore is the persistence boundary of the service. Place create/delete
// also maintain the owning user's place list, so both sides of the
// user <-> place relation stay consistent.
type DataStore interface {
	InsertUser(ctx context.Context, user *app.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*app.User, error)
	UserByEmail(ctx context.Context, email string) (*app.User, error)
	Users(ctx context.Context) ([]app.User, error)

	PlaceByID(ctx context.Context, id primitive.ObjectID) (*app.Place, error)
	PlacesByCreator(ctx context.Context, creator primitive.ObjectID) ([]app.Place, error)
	// CreatePlace persists the place and appends its id to the creator's
	// place list.
	CreatePlace(ctx context.Context, place *app.Place) error
	UpdatePlace(ctx context.Context, place *app.Place) error
	// DeletePlace removes the place and pulls its id from the creator's
	// place list.
	DeletePlace(ctx context.Context, place *app.Place) error

	Close(ctx context.Context) error
}
