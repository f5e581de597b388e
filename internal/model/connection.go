package model

import "time"

// JiraConnection is a stored connection profile for one Jira server.
// EncryptedPassword holds ciphertext and is never serialized.
type JiraConnection struct {
	ID                string    `json:"id"`
	Label             string    `json:"label"`
	APIURL            string    `json:"api_url"`
	Username          string    `json:"username"`
	EncryptedPassword string    `json:"-"`
	StoryPointsField  string    `json:"story_points_field"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName is the label, or the API URL for unlabeled connections.
func (c *JiraConnection) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return c.APIURL
}

// ConnectionResponse is the wire shape for a connection. It reports
// whether a password is stored without ever carrying the secret.
type ConnectionResponse struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	APIURL           string    `json:"api_url"`
	Username         string    `json:"username"`
	StoryPointsField string    `json:"story_points_field"`
	HasPassword      bool      `json:"has_password"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ConnectionRequest struct {
	Label            string `json:"label" form:"label"`
	APIURL           string `json:"api_url" form:"api_url" binding:"required"`
	Username         string `json:"username" form:"username"`
	Password         string `json:"password" form:"password"`
	StoryPointsField string `json:"story_points_field" form:"story_points_field" binding:"required"`
}

// AuthOverride carries request-scoped credentials that take precedence
// over the stored ones. Never persisted.
type AuthOverride struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
