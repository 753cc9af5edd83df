package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/remedia/internal/models"
)

var errInvalidToken = errors.New("invalid token")

func currentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(contextUserKey).(models.User)
	return user, ok
}

func currentRoom(c *fiber.Ctx) (models.Room, bool) {
	room, ok := c.Locals(contextRoomKey).(models.Room)
	return room, ok
}

// AuthRequired parses the bearer token, checks it against the room in the
// path and loads the member it identifies.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	claims, err := handler.parseToken(bearerToken(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	if code == "" || claims.RoomCode != code {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "wrong room"})
	}

	room, found, err := handler.repos.Rooms.FindByCode(code)
	if err != nil || !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
	}

	user, found, err := handler.repos.Users.FindByID(claims.UserID)
	if err != nil || !found || user.RoomID != room.ID {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	c.Locals(contextUserKey, user)
	c.Locals(contextRoomKey, room)
	return c.Next()
}

// AdminOnly guards mutations reserved for the room admin.
func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok || !user.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin only"})
	}
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (handler *Handler) parseToken(raw string) (*roomClaims, error) {
	if raw == "" {
		return nil, errInvalidToken
	}

	claims := &roomClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" || claims.RoomCode == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}
