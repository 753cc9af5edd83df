package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terraincognita07/remedia/internal/db"
	"github.com/terraincognita07/remedia/internal/models"
)

func TestGenerateTemporaryPassphraseMinimumLength(t *testing.T) {
	t.Parallel()

	passphrase, err := generateTemporaryPassphrase(4)
	if err != nil {
		t.Fatalf("generateTemporaryPassphrase returned error: %v", err)
	}
	if len(passphrase) != 8 {
		t.Fatalf("generateTemporaryPassphrase minimum len = %d, want 8", len(passphrase))
	}
}

func TestGenerateTemporaryPassphraseAlphabet(t *testing.T) {
	t.Parallel()

	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	passphrase, err := generateTemporaryPassphrase(24)
	if err != nil {
		t.Fatalf("generateTemporaryPassphrase returned error: %v", err)
	}
	if len(passphrase) != 24 {
		t.Fatalf("generateTemporaryPassphrase len = %d, want 24", len(passphrase))
	}

	for _, char := range passphrase {
		if !strings.ContainsRune(alphabet, char) {
			t.Fatalf("passphrase %q contains char %q outside alphabet", passphrase, char)
		}
	}
}

func TestIsTerminalRejectsNonTerminals(t *testing.T) {
	t.Parallel()

	if isTerminal(nil) {
		t.Fatal("nil file reported as a terminal")
	}

	regular, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer regular.Close()
	if isTerminal(regular) {
		t.Fatal("regular file reported as a terminal")
	}

	// /dev/null is a character device but not a terminal; feeding it as
	// stdin must take the generated-passphrase path, not the prompt.
	null, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	defer null.Close()
	if isTerminal(null) {
		t.Fatalf("%s reported as a terminal", os.DevNull)
	}
}

func TestRunResetAdminPassCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rooms.db")
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	room := models.Room{
		ID:            "room-1",
		Code:          "ABC234",
		AdminPassHash: "old-hash",
	}
	if err := database.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	// Test stdin is not a terminal, so the generated-passphrase path runs.
	if err := RunResetAdminPassCommand(dbPath, "abc234"); err != nil {
		t.Fatalf("RunResetAdminPassCommand: %v", err)
	}

	var updated models.Room
	if err := database.Where("code = ?", "ABC234").First(&updated).Error; err != nil {
		t.Fatalf("reload room: %v", err)
	}
	if updated.AdminPassHash == "old-hash" || updated.AdminPassHash == "" {
		t.Fatalf("admin pass hash not replaced: %q", updated.AdminPassHash)
	}
	if !strings.HasPrefix(updated.AdminPassHash, "$2") {
		t.Fatalf("admin pass hash is not bcrypt: %q", updated.AdminPassHash)
	}
}

func TestRunResetAdminPassCommandUnknownRoom(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rooms.db")
	if _, err := db.OpenSQLite(dbPath); err != nil {
		t.Fatalf("open database: %v", err)
	}

	if err := RunResetAdminPassCommand(dbPath, "ZZZZZZ"); err == nil {
		t.Fatal("expected error for unknown room")
	}
}

func TestRunResetAdminPassCommandRequiresCode(t *testing.T) {
	t.Parallel()

	if err := RunResetAdminPassCommand("unused.db", "   "); err == nil {
		t.Fatal("expected error for blank room code")
	}
}
