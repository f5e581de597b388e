package utils

import "github.com/planpoker/poker-jira-backend/internal/model"

func ConvertConnectionToResponse(conn model.JiraConnection) model.ConnectionResponse {
	return model.ConnectionResponse{
		ID:               conn.ID,
		Label:            conn.Label,
		APIURL:           conn.APIURL,
		Username:         conn.Username,
		StoryPointsField: conn.StoryPointsField,
		HasPassword:      conn.EncryptedPassword != "",
		CreatedAt:        conn.CreatedAt,
		UpdatedAt:        conn.UpdatedAt,
	}
}

func ConvertConnectionsToResponse(conns []model.JiraConnection) []model.ConnectionResponse {
	resp := make([]model.ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		resp = append(resp, ConvertConnectionToResponse(c))
	}
	return resp
}
