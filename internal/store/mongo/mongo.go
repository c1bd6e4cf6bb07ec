package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blograg/internal/domain"
	"blograg/internal/store"
)

const (
	DefaultURI      = "mongodb://localhost:27017/"
	DefaultDatabase = "blog_database"
)

type blogRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Author    string             `bson:"author"`
	Category  string             `bson:"category"`
	Views     int64              `bson:"views"`
	CreatedAt time.Time          `bson:"created_at"`
}

type userRecord struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Username      string               `bson:"username"`
	Email         string               `bson:"email"`
	FavoriteBlogs []primitive.ObjectID `bson:"favorite_blogs"`
	CreatedAt     time.Time            `bson:"created_at"`
}

// Store keeps blogs and users in the "blogs" and "users" collections.
type Store struct {
	client *mongo.Client
	blogs  *mongo.Collection
	users  *mongo.Collection
	now    func() time.Time
}

// Open connects to uri and checks the server is reachable.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		uri = DefaultURI
	}
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(database)
	return &Store{client: client, blogs: db.Collection("blogs"), users: db.Collection("users"), now: time.Now}, nil
}

// ListDocuments returns blogs in _id order, which is insertion order for
// driver-generated ObjectIDs.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	cur, err := s.blogs.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find blogs: %w", err)
	}
	var recs []blogRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("read blogs: %w", err)
	}
	docs := make([]domain.Document, len(recs))
	for i, r := range recs {
		docs[i] = r.document()
	}
	return docs, nil
}

func (s *Store) FindDocument(ctx context.Context, id domain.DocumentID) (domain.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return domain.Document{}, store.NotFound(id)
	}
	var rec blogRecord
	err = s.blogs.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Document{}, store.NotFound(id)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("find blog %s: %w", id, err)
	}
	return rec.document(), nil
}

func (s *Store) InsertDocument(ctx context.Context, doc domain.Document) (domain.DocumentID, error) {
	ids, err := s.InsertDocuments(ctx, []domain.Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (s *Store) InsertDocuments(ctx context.Context, docs []domain.Document) ([]domain.DocumentID, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	recs := make([]any, len(docs))
	ids := make([]domain.DocumentID, len(docs))
	now := s.now()
	for i, doc := range docs {
		p, err := store.PrepareDocument(doc, now)
		if err != nil {
			return nil, err
		}
		rec := newBlogRecord(p)
		recs[i], ids[i] = rec, domain.DocumentID(rec.ID.Hex())
	}
	if _, err := s.blogs.InsertMany(ctx, recs); err != nil {
		return nil, fmt.Errorf("insert blogs: %w", err)
	}
	return ids, nil
}

func (s *Store) IncrementViews(ctx context.Context, id domain.DocumentID) error {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return store.NotFound(id)
	}
	res, err := s.blogs.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("increment views %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return store.NotFound(id)
	}
	return nil
}

func (s *Store) DeleteAllDocuments(ctx context.Context) error {
	if _, err := s.blogs.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete blogs: %w", err)
	}
	return nil
}

func (s *Store) InsertUser(ctx context.Context, u domain.User) (domain.UserID, error) {
	ids, err := s.InsertUsers(ctx, []domain.User{u})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (s *Store) InsertUsers(ctx context.Context, users []domain.User) ([]domain.UserID, error) {
	if len(users) == 0 {
		return nil, nil
	}
	recs := make([]any, len(users))
	ids := make([]domain.UserID, len(users))
	now := s.now()
	for i, u := range users {
		p, err := store.PrepareUser(u, now)
		if err != nil {
			return nil, err
		}
		rec, err := newUserRecord(p)
		if err != nil {
			return nil, err
		}
		recs[i], ids[i] = rec, domain.UserID(rec.ID.Hex())
	}
	if _, err := s.users.InsertMany(ctx, recs); err != nil {
		return nil, fmt.Errorf("insert users: %w", err)
	}
	return ids, nil
}

func (s *Store) DeleteAllUsers(ctx context.Context) error {
	if _, err := s.users.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func newBlogRecord(d domain.Document) blogRecord {
	return blogRecord{
		ID:        primitive.NewObjectID(),
		Title:     d.Title,
		Content:   d.Body,
		Author:    d.Author,
		Category:  d.Category,
		Views:     d.Views,
		CreatedAt: d.CreatedAt,
	}
}

func (r blogRecord) document() domain.Document {
	// Records written by other tools may lack a category.
	return domain.Document{
		ID:        domain.DocumentID(r.ID.Hex()),
		Title:     r.Title,
		Body:      r.Content,
		Author:    r.Author,
		Category:  r.Category,
		Views:     r.Views,
		CreatedAt: r.CreatedAt,
	}.Normalize()
}

func newUserRecord(u domain.User) (userRecord, error) {
	favs := make([]primitive.ObjectID, len(u.FavoriteBlogs))
	for i, id := range u.FavoriteBlogs {
		oid, err := primitive.ObjectIDFromHex(id.String())
		if err != nil {
			return userRecord{}, fmt.Errorf("%w: favorite blog %q is not a valid id", domain.ErrInvalidInput, id)
		}
		favs[i] = oid
	}
	return userRecord{
		ID:            primitive.NewObjectID(),
		Username:      u.Username,
		Email:         u.Email,
		FavoriteBlogs: favs,
		CreatedAt:     u.CreatedAt,
	}, nil
}
