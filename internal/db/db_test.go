package db

import (
	"os"
	"path/filepath"
	"testing"

	"devconnect/internal/config"
	"devconnect/internal/user"
)

func TestOpen_SQLiteCreatesFivePerEntityFiles(t *testing.T) {
	cfg := config.Default()
	cfg.Database.DataDir = filepath.Join(t.TempDir(), "data")

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	for _, name := range []string{StoreUsers, StoreGigs, StoreComments, StoreMessages, StoreNotifications} {
		if _, err := os.Stat(filepath.Join(cfg.Database.DataDir, name+".db")); err != nil {
			t.Errorf("expected %s.db to exist: %v", name, err)
		}
	}
	if !s.Users.Migrator().HasTable(&user.User{}) {
		t.Errorf("users table not migrated")
	}
	if s.Users.Migrator().HasTable("gigs") {
		t.Errorf("gigs table must live in its own store, not in users.db")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"
	if _, err := Open(cfg); err == nil {
		t.Errorf("expected error for unsupported driver")
	}
}

func TestOpenMemory_Isolated(t *testing.T) {
	a, err := OpenMemory("TestOpenMemory_A")
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer a.Close()
	b, err := OpenMemory("TestOpenMemory_B")
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer b.Close()

	if err := a.Users.Create(&user.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"}).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var count int64
	b.Users.Model(&user.User{}).Count(&count)
	if count != 0 {
		t.Errorf("memory stores leaked between sets, got %d users", count)
	}
}
