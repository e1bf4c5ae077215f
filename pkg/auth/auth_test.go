package auth

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oliverkemp/staffdesk/pkg/models"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Error("expected matching password to verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("expected mismatched password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken(42, "admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "admin" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	if _, err := VerifyToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestNameFromEmail(t *testing.T) {
	cases := []struct{ email, want string }{
		{"jane.doe@example.edu", "Jane Doe"},
		{"bob@example.edu", "Bob"},
		{"mary_ann-smith@example.edu", "Mary Ann Smith"},
		{"noatsign", "Noatsign"},
	}
	for _, c := range cases {
		if got := NameFromEmail(c.email); got != c.want {
			t.Errorf("NameFromEmail(%q) = %q, want %q", c.email, got, c.want)
		}
	}
}

func TestEnsureAdminExists(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:auth_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := EnsureAdminExists(db); err != nil {
		t.Fatalf("EnsureAdminExists: %v", err)
	}

	var admin models.User
	if err := db.Where("role = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("expected an admin user: %v", err)
	}
	if admin.PasswordHash == "" {
		t.Error("expected admin to have a password hash")
	}

	// Second call must not create a duplicate
	if err := EnsureAdminExists(db); err != nil {
		t.Fatalf("EnsureAdminExists again: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 admin, got %d", count)
	}
}
