package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Bilal-32/movie-api/internal/database"
	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/utils"
)

// UserRepo is the credential store, backed by the `users` collection.
type UserRepo struct{ Coll *mongo.Collection }

// NewUserRepo binds the repository to the users collection of db.
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{Coll: db.Collection(database.UsersCollection)}
}

// GetByUsername fetches a user by exact, case-sensitive username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.Coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// List returns every user in insertion order.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.Coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create hashes the password and inserts the user.
func (r *UserRepo) Create(ctx context.Context, in model.UserInput, cost int) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	u := model.User{
		ID:             bson.NewObjectID(),
		Username:       in.Username,
		Password:       hash,
		Email:          in.Email,
		Birthday:       in.Birthday,
		FavoriteMovies: []string{},
	}
	if _, err := r.Coll.InsertOne(ctx, u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// Update replaces the profile fields of the user named username and returns
// the updated document.
func (r *UserRepo) Update(ctx context.Context, username string, in model.UserInput, cost int) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "username", Value: in.Username},
		{Key: "password", Value: hash},
		{Key: "email", Value: in.Email},
		{Key: "birthday", Value: in.Birthday},
	}}}
	return r.findOneAndUpdate(ctx, username, update)
}

// AddFavorite appends movieID to the favorites list. An id already present
// is appended again.
func (r *UserRepo) AddFavorite(ctx context.Context, username, movieID string) (*model.User, error) {
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "favoriteMovies", Value: movieID}}}}
	return r.findOneAndUpdate(ctx, username, update)
}

// RemoveFavorite removes every occurrence of movieID from the favorites list.
func (r *UserRepo) RemoveFavorite(ctx context.Context, username, movieID string) (*model.User, error) {
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "favoriteMovies", Value: movieID}}}}
	return r.findOneAndUpdate(ctx, username, update)
}

// Delete removes the user named username.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	res, err := r.Coll.DeleteOne(ctx, bson.D{{Key: "username", Value: username}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// findOneAndUpdate applies update to the user named username and returns
// the document as it is after the update.
func (r *UserRepo) findOneAndUpdate(ctx context.Context, username string, update bson.D) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u model.User
	err := r.Coll.FindOneAndUpdate(ctx, bson.D{{Key: "username", Value: username}}, update, opts).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// mapErr translates driver errors into the package sentinels.
func mapErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrUserExists, err)
	default:
		return err
	}
}
