package model

import "time"

// PokerSession is an estimation round stories can belong to.
type PokerSession struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}
