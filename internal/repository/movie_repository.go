package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Bilal-32/movie-api/internal/database"
	"github.com/Bilal-32/movie-api/internal/model"
)

// MovieRepo is the catalog store, backed by the `movies` collection.
type MovieRepo struct{ Coll *mongo.Collection }

// NewMovieRepo binds the repository to the movies collection of db.
func NewMovieRepo(db *mongo.Database) *MovieRepo {
	return &MovieRepo{Coll: db.Collection(database.MoviesCollection)}
}

// List returns the whole catalog.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	cur, err := r.Coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	movies := []model.Movie{}
	if err := cur.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetByTitle returns the first movie with the exact title.
func (r *MovieRepo) GetByTitle(ctx context.Context, title string) (*model.Movie, error) {
	return r.findOne(ctx, bson.D{{Key: "title", Value: title}}, nil)
}

// GetGenre returns the genre of the first movie whose genre has this name.
func (r *MovieRepo) GetGenre(ctx context.Context, name string) (*model.Genre, error) {
	m, err := r.findOne(ctx, bson.D{{Key: "genre.name", Value: name}}, bson.D{{Key: "genre", Value: 1}})
	if err != nil {
		return nil, err
	}
	return &m.Genre, nil
}

// GetDirector returns the director of the first movie directed by name.
func (r *MovieRepo) GetDirector(ctx context.Context, name string) (*model.Director, error) {
	m, err := r.findOne(ctx, bson.D{{Key: "director.name", Value: name}}, bson.D{{Key: "director", Value: 1}})
	if err != nil {
		return nil, err
	}
	return &m.Director, nil
}

// InsertMany loads movies into the catalog. Used by the seed command.
func (r *MovieRepo) InsertMany(ctx context.Context, movies []model.Movie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}
	docs := make([]any, len(movies))
	for i := range movies {
		if movies[i].ID.IsZero() {
			movies[i].ID = bson.NewObjectID()
		}
		docs[i] = movies[i]
	}
	res, err := r.Coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (r *MovieRepo) findOne(ctx context.Context, filter, projection bson.D) (*model.Movie, error) {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var m model.Movie
	if err := r.Coll.FindOne(ctx, filter, opts).Decode(&m); err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}
