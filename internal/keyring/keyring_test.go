package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/taskflow/internal/constants"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("   "); err == nil {
		t.Error("SetConnectionString with blank input should return an error")
	}
}

func TestGetConnectionStringNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://testuser@localhost:5432/testdb"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring")
	}

	gokeyring.MockInitWithError(errors.New("dbus down"))
	if IsAvailable() {
		t.Error("IsAvailable() = true when the keyring errors")
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrKeyringUnavailable)
	}
}

func TestResolveConfig(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(constants.EnvDBConnection, "")

	if got, err := ResolveConfig("/tmp/taskflow.db"); err != nil || got != "/tmp/taskflow.db" {
		t.Errorf("ResolveConfig(path) = %q, %v", got, err)
	}

	if _, err := ResolveConfig("keyring"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveConfig(keyring) with empty keyring error = %v, want %v", err, ErrNotFound)
	}

	t.Setenv(constants.EnvDBConnection, "postgres://env@localhost/db")
	if got, err := ResolveConfig("keyring"); err != nil || got != "postgres://env@localhost/db" {
		t.Errorf("ResolveConfig(keyring) env fallback = %q, %v", got, err)
	}

	if err := SetConnectionString("postgres://ring@localhost/db"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if got, err := ResolveConfig("keyring"); err != nil || got != "postgres://ring@localhost/db" {
		t.Errorf("ResolveConfig(keyring) = %q, %v; want keyring value", got, err)
	}
}
