package api

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/terraincognita07/remedia/internal/models"
	"github.com/terraincognita07/remedia/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const roomCodeAttempts = 5

var errRoomCodeExhausted = errors.New("could not allocate an unused room code")

type createRoomInput struct {
	AdminPass string `json:"admin_pass"`
}

type joinRoomInput struct {
	Name      string `json:"name"`
	AdminPass string `json:"admin_pass"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) CreateRoom(c *fiber.Ctx) error {
	input := createRoomInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	adminPass := strings.TrimSpace(input.AdminPass)
	if len(adminPass) < 4 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "admin passphrase too short"})
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "create room failed"})
	}

	code, err := handler.freshRoomCode()
	if err != nil {
		log.Printf("rooms: generate code failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "create room failed"})
	}

	room := models.Room{
		ID:                uuid.NewString(),
		Code:              code,
		AdminPassHash:     string(passHash),
		CategoryCollapsed: map[string]bool{},
		CreatedAt:         time.Now(),
	}
	if err := handler.repos.Rooms.Create(&room); err != nil {
		log.Printf("rooms: create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "create room failed"})
	}

	for _, unit := range models.DefaultUnits() {
		unit.ID = uuid.NewString()
		unit.RoomID = room.ID
		if err := handler.repos.Units.Create(&unit); err != nil {
			log.Printf("rooms: seed unit %q failed: %v", unit.Name, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"code": room.Code})
}

func (handler *Handler) JoinRoom(c *fiber.Ctx) error {
	now := time.Now()
	limiterKey := requestLimiterKey(c)
	if handler.joinLimiter.tooManyRecent(limiterKey, now, joinAttemptLimit, joinAttemptWindow) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts"})
	}

	input := joinRoomInput{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name required"})
	}

	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	room, found, err := handler.repos.Rooms.FindByCode(code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "join failed"})
	}
	if !found {
		handler.joinLimiter.addFailure(limiterKey, now, joinAttemptWindow)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
	}

	isAdmin := false
	if strings.TrimSpace(input.AdminPass) != "" {
		if bcrypt.CompareHashAndPassword([]byte(room.AdminPassHash), []byte(strings.TrimSpace(input.AdminPass))) != nil {
			handler.joinLimiter.addFailure(limiterKey, now, joinAttemptWindow)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "wrong admin passphrase"})
		}
		isAdmin = true
	}
	handler.joinLimiter.reset(limiterKey)

	// A member is created on the first join only. Later joins with the same
	// name pick up the existing record and a fresh token, so a reinstalled
	// client does not mint a duplicate.
	existing, found, err := handler.repos.Users.FindByRoomAndName(room.ID, name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "join failed"})
	}
	if found {
		if isAdmin && !existing.IsAdmin {
			if err := handler.repos.Users.SetAdmin(existing.ID, true); err != nil {
				log.Printf("rooms: promote user failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "join failed"})
			}
			existing.IsAdmin = true
			handler.bumpAndWake(room.ID)
		}
		token, err := handler.buildToken(existing, room)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "join failed"})
		}
		return c.JSON(fiber.Map{"token": token, "user": existing})
	}

	user := models.User{
		ID:                    uuid.NewString(),
		RoomID:                room.ID,
		Name:                  name,
		IsAdmin:               isAdmin,
		RemindersEnabled:      map[string]bool{},
		ReminderTimes:         map[string]string{},
		TreatmentTimerEnabled: true,
		TreatmentTimerSeconds: models.DefaultTreatmentTimerSeconds,
		CreatedAt:             now,
	}
	if err := handler.repos.Users.Create(&user); err != nil {
		log.Printf("rooms: create user failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "join failed"})
	}

	token, err := handler.buildToken(user, room)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "join failed"})
	}

	handler.bumpAndWake(room.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token, "user": user})
}

func (handler *Handler) buildToken(user models.User, room models.Room) (string, error) {
	now := time.Now()
	claims := roomClaims{
		UserID:   user.ID,
		RoomCode: room.Code,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(authTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) freshRoomCode() (string, error) {
	var lastErr error
	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		code, err := security.NewRoomCode()
		if err != nil {
			return "", err
		}
		taken, err := handler.repos.Rooms.ExistsByCode(code)
		if err != nil {
			lastErr = err
			continue
		}
		if !taken {
			return code, nil
		}
	}
	if lastErr == nil {
		lastErr = errRoomCodeExhausted
	}
	return "", lastErr
}

// bumpAndWake advances the room version and releases snapshot long-pollers.
func (handler *Handler) bumpAndWake(roomID string) {
	if _, err := handler.repos.Rooms.BumpVersion(roomID); err != nil {
		log.Printf("rooms: bump version failed: %v", err)
		return
	}
	handler.hub.Wake(roomID)
}
