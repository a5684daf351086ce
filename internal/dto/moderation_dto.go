package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	ContentType    string     `json:"content_type"`
	ContentID      string     `json:"content_id"`
	PostID         *string    `json:"post_id,omitempty"`
	ReportedUserID *uuid.UUID `json:"reported_user_id,omitempty"`
	Reason         string     `json:"reason"`
	Description    string     `json:"description,omitempty"`
}

type RecomputeBatchRequest struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}
