package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	app "placeshare/src/app"
)

// MemoryStore is a map-backed DataStore used in tests and when no database
// URI is configured. Both steps of place create/delete happen under one lock,
// so the user <-> place relation can not be observed half-updated.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[primitive.ObjectID]app.User
	places map[primitive.ObjectID]app.Place
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[primitive.ObjectID]app.User),
		places: make(map[primitive.ObjectID]app.Place),
	}
}

func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) InsertUser(ctx context.Context, user *app.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Places == nil {
		user.Places = []primitive.ObjectID{}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) UserByID(ctx context.Context, id primitive.ObjectID) (*app.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := user
	copied.Places = append([]primitive.ObjectID{}, user.Places...)
	return &copied, nil
}

func (m *MemoryStore) UserByEmail(ctx context.Context, email string) (*app.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			copied := user
			copied.Places = append([]primitive.ObjectID{}, user.Places...)
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Users(ctx context.Context) ([]app.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := []app.User{}
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *MemoryStore) PlaceByID(ctx context.Context, id primitive.ObjectID) (*app.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	place, ok := m.places[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := place
	return &copied, nil
}

func (m *MemoryStore) PlacesByCreator(ctx context.Context, creator primitive.ObjectID) ([]app.Place, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	places := []app.Place{}
	for _, place := range m.places {
		if place.Creator == creator {
			places = append(places, place)
		}
	}
	return places, nil
}

func (m *MemoryStore) CreatePlace(ctx context.Context, place *app.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[place.Creator]
	if !ok {
		return ErrNotFound
	}
	if place.ID.IsZero() {
		place.ID = primitive.NewObjectID()
	}
	m.places[place.ID] = *place
	user.Places = append(user.Places, place.ID)
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) UpdatePlace(ctx context.Context, place *app.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.places[place.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = place.Title
	existing.Description = place.Description
	m.places[place.ID] = existing
	return nil
}

func (m *MemoryStore) DeletePlace(ctx context.Context, place *app.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.places[place.ID]; !ok {
		return ErrNotFound
	}
	delete(m.places, place.ID)

	if user, ok := m.users[place.Creator]; ok {
		kept := user.Places[:0]
		for _, id := range user.Places {
			if id != place.ID {
				kept = append(kept, id)
			}
		}
		user.Places = kept
		m.users[user.ID] = user
	}
	return nil
}
