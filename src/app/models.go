package app

import "go.mongodb.org/mongo-driver/bson/primitive"

// Location is a geocoded coordinate pair. It is derived from the free-text
// address of a place and never supplied by clients directly.
type Location struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Place represents a place record created by a user.
type Place struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`

	// The free-text address the place was created with.
	Address string `json:"address" bson:"address"`

	// Coordinates resolved from Address at creation time.
	Location Location `json:"location" bson:"location"`

	// The URL of the uploaded image in the S3 bucket.
	Image string `json:"image" bson:"image"`

	// Creator references the owning user. Immutable after creation.
	Creator primitive.ObjectID `json:"creator" bson:"creator"`
}

// User represents a registered user with a one-to-many relationship to Places.
type User struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	// User's display name.
	Name string `json:"name" bson:"name"`

	// User's email address, unique across users.
	Email string `json:"email" bson:"email"`

	// Bcrypt hash of the password. Never serialized to clients.
	Password string `json:"-" bson:"password"`

	// The URL of the user's profile image in the S3 bucket.
	Image string `json:"image" bson:"image"`

	// Ordered ids of the places owned by this user. Kept in sync with the
	// creator field of the places collection on create/delete.
	Places []primitive.ObjectID `json:"places" bson:"places"`
}
