package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store on top of a MongoDB collection. Call
// EnsureIndexes once at startup: the unique index on
// (user_id, access_credential) backs conflict detection, and the TTL index
// on expires_at lets MongoDB collect expired rows on its own schedule in
// addition to the subsystem's sweeper.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a MongoDB-backed session store using the
// "sessions" collection of the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("sessions")}
}

// mongoSession is the persisted document shape. UUIDs are stored as their
// canonical strings to keep documents queryable by hand.
type mongoSession struct {
	ID                string    `bson:"_id"`
	UserID            string    `bson:"user_id"`
	DeviceFingerprint string    `bson:"device_fingerprint"`
	NetworkAddress    string    `bson:"network_address"`
	ClientAgent       string    `bson:"client_agent"`
	AccessCredential  string    `bson:"access_credential"`
	RefreshCredential string    `bson:"refresh_credential,omitempty"`
	ExpiresAt         time.Time `bson:"expires_at"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func toMongoSession(s *Session) mongoSession {
	return mongoSession{
		ID:                s.ID.String(),
		UserID:            s.UserID.String(),
		DeviceFingerprint: s.DeviceFingerprint,
		NetworkAddress:    s.NetworkAddress,
		ClientAgent:       s.ClientAgent,
		AccessCredential:  s.AccessCredential,
		RefreshCredential: s.RefreshCredential,
		ExpiresAt:         s.ExpiresAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (d mongoSession) toSession() (*Session, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:                id,
		UserID:            userID,
		DeviceFingerprint: d.DeviceFingerprint,
		NetworkAddress:    d.NetworkAddress,
		ClientAgent:       d.ClientAgent,
		AccessCredential:  d.AccessCredential,
		RefreshCredential: d.RefreshCredential,
		ExpiresAt:         d.ExpiresAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

// EnsureIndexes creates the indexes the store depends on. Idempotent.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "access_credential", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "device_fingerprint", Value: 1}, {Key: "updated_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

func (m *MongoStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == uuid.Nil {
		return ErrInvalidSession
	}

	_, err := m.coll.InsertOne(ctx, toMongoSession(s))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Join(ErrSessionConflict, err)
		}
		return err
	}
	return nil
}

func (m *MongoStore) findOne(ctx context.Context, filter bson.M, opts ...options.Lister[options.FindOneOptions]) (*Session, error) {
	var doc mongoSession
	err := m.coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return doc.toSession()
}

func (m *MongoStore) FindByUserAndDevice(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*Session, error) {
	return m.findOne(ctx,
		bson.M{"user_id": userID.String(), "device_fingerprint": deviceFingerprint},
		options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
}

func (m *MongoStore) FindByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (*Session, error) {
	return m.findOne(ctx, bson.M{"user_id": userID.String(), "access_credential": accessCredential})
}

func (m *MongoStore) UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt, updatedAt time.Time) (*Session, error) {
	var doc mongoSession
	err := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"expires_at": expiresAt, "updated_at": updatedAt}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return doc.toSession()
}

func (m *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	return err
}

func (m *MongoStore) DeleteByUserAndCredential(ctx context.Context, userID uuid.UUID, accessCredential string) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, bson.M{"user_id": userID.String(), "access_credential": accessCredential})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoStore) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": t}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error) {
	cursor, err := m.coll.Find(ctx,
		bson.M{"user_id": userID.String()},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*Session
	for cursor.Next(ctx) {
		var doc mongoSession
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		s, err := doc.toSession()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, cursor.Err()
}
