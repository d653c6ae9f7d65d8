package model

import "time"

// Rating is a participant's persistent match rating. Adjustments are
// applied as increments, so the document is created on first use.
type Rating struct {
	PlayerID  string    `bson:"_id" json:"player_id"`
	Elo       int       `bson:"elo" json:"elo"`
	Wins      int       `bson:"wins" json:"wins"`
	Losses    int       `bson:"losses" json:"losses"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
