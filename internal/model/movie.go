package model

import "go.mongodb.org/mongo-driver/v2/bson"

// Movie is a document in the `movies` collection. The catalog is read-only
// through the API.
type Movie struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Genre       Genre         `bson:"genre" json:"genre"`
	Director    Director      `bson:"director" json:"director"`
	Actors      []string      `bson:"actors,omitempty" json:"actors,omitempty"`
	ImagePath   string        `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	Featured    bool          `bson:"featured" json:"featured"`
}

// Genre is embedded in Movie.
type Genre struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

// Director is embedded in Movie. Birth and Death are free-form years.
type Director struct {
	Name  string `bson:"name" json:"name"`
	Bio   string `bson:"bio" json:"bio"`
	Birth string `bson:"birth,omitempty" json:"birth,omitempty"`
	Death string `bson:"death,omitempty" json:"death,omitempty"`
}
