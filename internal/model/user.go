package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a document in the `users` collection.
//
// Fields:
//
//	ID             – store-assigned identifier.
//	Username       – unique login name.
//	Password       – bcrypt digest; never serialized to clients.
//	Email          – contact address.
//	Birthday       – date of birth (midnight UTC).
//	FavoriteMovies – ordered movie ids; duplicates are kept.
type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username       string        `bson:"username" json:"username"`
	Password       string        `bson:"password" json:"-"`
	Email          string        `bson:"email" json:"email"`
	Birthday       time.Time     `bson:"birthday" json:"birthday"`
	FavoriteMovies []string      `bson:"favoriteMovies" json:"favoriteMovies"`
}

// UserInput carries the fields accepted by registration and profile update.
// Password is the raw password; repositories hash it before storing.
type UserInput struct {
	Username string
	Password string
	Email    string
	Birthday time.Time
}
