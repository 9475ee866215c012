package domain

import (
	"time"
)

type StatusCheck struct {
	ID         string    `dynamodbav:"id"          json:"id"`
	ClientName string    `dynamodbav:"client_name" json:"client_name"`
	Timestamp  time.Time `dynamodbav:"timestamp"   json:"timestamp"`
}

type CreateStatusCheckRequest struct {
	ClientName string `json:"client_name" binding:"required"`
}
