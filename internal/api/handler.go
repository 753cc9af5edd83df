// Package api exposes each room's tree over a JSON API: membership,
// entity mutations and long-polled snapshot delivery.
package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/remedia/internal/db"
	"gorm.io/gorm"
)

const (
	contextUserKey = "current_user"
	contextRoomKey = "current_room"

	authTokenTTL = 90 * 24 * time.Hour

	joinAttemptLimit  = 10
	joinAttemptWindow = 15 * time.Minute

	// longPollTimeout bounds how long a snapshot request may hang before
	// returning the unchanged tree.
	longPollTimeout = 25 * time.Second
)

type Handler struct {
	repos       *db.Repositories
	secretKey   []byte
	location    *time.Location
	hub         *changeHub
	joinLimiter *attemptLimiter
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		repos:       db.NewRepositories(database),
		secretKey:   []byte(secretKey),
		location:    location,
		hub:         newChangeHub(),
		joinLimiter: newAttemptLimiter(),
	}
}

type roomClaims struct {
	UserID   string `json:"uid"`
	RoomCode string `json:"room"`
	IsAdmin  bool   `json:"admin"`
	jwt.RegisteredClaims
}
