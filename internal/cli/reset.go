// Package cli holds the operator commands shipped inside the server binary.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/terraincognita07/remedia/internal/db"
	"github.com/terraincognita07/remedia/internal/models"
	"github.com/terraincognita07/remedia/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minAdminPassLength = 4

// RunResetAdminPassCommand replaces a room's admin passphrase. bcrypt hashes
// cannot be recovered, so a forgotten passphrase locks the admin out for
// good without this. With a terminal attached the operator is prompted for a
// new passphrase without echo; an empty input or a non-interactive stdin
// falls back to a generated temporary passphrase, printed once.
func RunResetAdminPassCommand(dbPath string, roomCode string) error {
	code := strings.ToUpper(strings.TrimSpace(roomCode))
	if code == "" {
		return errors.New("room code is required")
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	var room models.Room
	if err := database.Where("code = ?", code).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("room %s not found", code)
		}
		return fmt.Errorf("load room: %w", err)
	}

	passphrase, generated, err := newAdminPassphrase(os.Stdin)
	if err != nil {
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin passphrase: %w", err)
	}

	room.AdminPassHash = string(passHash)
	if err := database.Save(&room).Error; err != nil {
		return fmt.Errorf("update room passphrase: %w", err)
	}

	fmt.Printf("Admin passphrase reset for room %s\n", code)
	if generated {
		fmt.Printf("Temporary passphrase: %s\n", passphrase)
		fmt.Println("Share it with the room admin and have them change it.")
	}

	return nil
}

func newAdminPassphrase(stdin *os.File) (string, bool, error) {
	if isTerminal(stdin) {
		fmt.Print("New admin passphrase (empty to generate one): ")
		raw, err := readPassphraseNoEcho(stdin)
		fmt.Println()
		if err != nil {
			return "", false, fmt.Errorf("read passphrase: %w", err)
		}

		passphrase := strings.TrimSpace(string(raw))
		if passphrase != "" {
			if len(passphrase) < minAdminPassLength {
				return "", false, fmt.Errorf("passphrase must be at least %d characters", minAdminPassLength)
			}
			return passphrase, false, nil
		}
	}

	generated, err := generateTemporaryPassphrase(12)
	if err != nil {
		return "", false, fmt.Errorf("generate temporary passphrase: %w", err)
	}
	return generated, true, nil
}

func generateTemporaryPassphrase(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	return security.RandomString(length, alphabet)
}
