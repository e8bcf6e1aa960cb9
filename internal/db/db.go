package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"devconnect/internal/comment"
	"devconnect/internal/config"
	"devconnect/internal/gig"
	"devconnect/internal/message"
	"devconnect/internal/notification"
	"devconnect/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Stores holds one independent database per entity. There are no
// cross-store transactions.
type Stores struct {
	Users         *gorm.DB
	Gigs          *gorm.DB
	Comments      *gorm.DB
	Messages      *gorm.DB
	Notifications *gorm.DB
}

const (
	StoreUsers         = "users"
	StoreGigs          = "gigs"
	StoreComments      = "comments"
	StoreMessages      = "messages"
	StoreNotifications = "notifications"
)

type dialectorFunc func(store string) gorm.Dialector

// Open connects the five stores described by cfg and migrates them.
func Open(cfg *config.Config) (*Stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return open(func(store string) gorm.Dialector {
			return postgres.Open(fmt.Sprintf(cfg.Database.DSNTemplate, store))
		})
	case config.DriverSQLite, "":
		dir := cfg.Database.DataDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return open(func(store string) gorm.Dialector {
			return sqlite.Open(filepath.Join(dir, store+".db") + "?_busy_timeout=5000")
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// OpenMemory opens five private in-memory sqlite stores. name keeps
// concurrently open sets apart (tests use t.Name()).
func OpenMemory(name string) (*Stores, error) {
	return open(func(store string) gorm.Dialector {
		return sqlite.Open(fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_busy_timeout=5000", name, store))
	})
}

func open(dialector dialectorFunc) (*Stores, error) {
	s := &Stores{}
	targets := []struct {
		name   string
		dst    **gorm.DB
		models []any
	}{
		{StoreUsers, &s.Users, []any{&user.User{}}},
		{StoreGigs, &s.Gigs, []any{&gig.Gig{}}},
		{StoreComments, &s.Comments, []any{&comment.Comment{}}},
		{StoreMessages, &s.Messages, []any{&message.Message{}}},
		{StoreNotifications, &s.Notifications, []any{&notification.Notification{}}},
	}
	for _, tg := range targets {
		g, err := gorm.Open(dialector(tg.name), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("open %s store: %w", tg.name, err)
		}
		sqlDB, err := g.DB()
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("open %s store: %w", tg.name, err)
		}
		// sqlite allows one writer per file; a single connection serializes
		// statements instead of surfacing "database is locked".
		if g.Dialector.Name() == "sqlite" {
			sqlDB.SetMaxOpenConns(1)
		}
		if err := g.AutoMigrate(tg.models...); err != nil {
			_ = sqlDB.Close()
			_ = s.Close()
			return nil, fmt.Errorf("migrate %s store: %w", tg.name, err)
		}
		*tg.dst = g
	}
	return s, nil
}

// Close closes every opened store.
func (s *Stores) Close() error {
	var errsOut []error
	for _, g := range []*gorm.DB{s.Users, s.Gigs, s.Comments, s.Messages, s.Notifications} {
		if g == nil {
			continue
		}
		sqlDB, err := g.DB()
		if err != nil {
			errsOut = append(errsOut, err)
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errsOut = append(errsOut, err)
		}
	}
	return errors.Join(errsOut...)
}
