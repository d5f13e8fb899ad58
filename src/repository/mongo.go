package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	app "placeshare/src/app"
	cfg "placeshare/src/configuration"
)

const (
	usersCollection  = "users"
	placesCollection = "places"
)

// MongoStore persists users and places in two MongoDB collections.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	places *mongo.Collection
	log    *zap.Logger
}

func NewMongoStore(ctx context.Context, config cfg.DBProperties, log *zap.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("can not connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb not reachable: %w", err)
	}

	db := client.Database(config.Name)
	store := &MongoStore{
		client: client,
		users:  db.Collection(usersCollection),
		places: db.Collection(placesCollection),
		log:    log,
	}
	if err := store.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("can not create email index: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) InsertUser(ctx context.Context, user *app.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Places == nil {
		user.Places = []primitive.ObjectID{}
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("can not insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) UserByID(ctx context.Context, id primitive.ObjectID) (*app.User, error) {
	var user app.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can not fetch user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*app.User, error) {
	var user app.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can not fetch user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) Users(ctx context.Context) ([]app.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("can not list users: %w", err)
	}
	users := []app.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("can not decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) PlaceByID(ctx context.Context, id primitive.ObjectID) (*app.Place, error) {
	var place app.Place
	err := s.places.FindOne(ctx, bson.M{"_id": id}).Decode(&place)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can not fetch place: %w", err)
	}
	return &place, nil
}

func (s *MongoStore) PlacesByCreator(ctx context.Context, creator primitive.ObjectID) ([]app.Place, error) {
	cursor, err := s.places.Find(ctx, bson.M{"creator": creator})
	if err != nil {
		return nil, fmt.Errorf("can not list places: %w", err)
	}
	places := []app.Place{}
	if err := cursor.All(ctx, &places); err != nil {
		return nil, fmt.Errorf("can not decode places: %w", err)
	}
	return places, nil
}

func (s *MongoStore) CreatePlace(ctx context.Context, place *app.Place) error {
	if place.ID.IsZero() {
		place.ID = primitive.NewObjectID()
	}
	return s.withTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.places.InsertOne(ctx, place); err != nil {
			return fmt.Errorf("can not insert place: %w", err)
		}
		result, err := s.users.UpdateOne(ctx,
			bson.M{"_id": place.Creator},
			bson.M{"$push": bson.M{"places": place.ID}})
		if err != nil {
			return fmt.Errorf("can not append place to user: %w", err)
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MongoStore) UpdatePlace(ctx context.Context, place *app.Place) error {
	result, err := s.places.UpdateOne(ctx,
		bson.M{"_id": place.ID},
		bson.M{"$set": bson.M{"title": place.Title, "description": place.Description}})
	if err != nil {
		return fmt.Errorf("can not update place: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePlace(ctx context.Context, place *app.Place) error {
	return s.withTransaction(ctx, func(ctx context.Context) error {
		result, err := s.places.DeleteOne(ctx, bson.M{"_id": place.ID})
		if err != nil {
			return fmt.Errorf("can not delete place: %w", err)
		}
		if result.DeletedCount == 0 {
			return ErrNotFound
		}
		if _, err := s.users.UpdateOne(ctx,
			bson.M{"_id": place.Creator},
			bson.M{"$pull": bson.M{"places": place.ID}}); err != nil {
			return fmt.Errorf("can not pull place from user: %w", err)
		}
		return nil
	})
}

// withTransaction runs the place write and the user place-list update as one
// unit when the deployment supports multi-document transactions. Standalone
// servers do not, so the fallback runs the steps sequentially; a failure of
// the second step then surfaces to the caller instead of being rolled back.
func (s *MongoStore) withTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && transactionsUnsupported(err) {
		s.log.Warn("mongodb transactions unavailable, falling back to sequential writes",
			zap.Error(err))
		return fn(ctx)
	}
	return err
}

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		return true
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
