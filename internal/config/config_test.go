package config

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_DSN", "file:shop.db")
	t.Setenv("MONGO_TRANSACTIONS", "off")
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("CURRENCY", "")

	cfg := Load()
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.MongoTransactions {
		t.Error("MongoTransactions should be false")
	}
	if cfg.LockTTL != 3*time.Second {
		t.Errorf("LockTTL = %s, want 3s", cfg.LockTTL)
	}
	if cfg.Currency != "INR" {
		t.Errorf("Currency = %q, want default INR", cfg.Currency)
	}
}

func TestGetDurationFallsBack(t *testing.T) {
	t.Setenv("SOME_TTL", "soon")
	if got := getDuration("SOME_TTL", time.Minute); got != time.Minute {
		t.Errorf("getDuration = %s, want 1m", got)
	}
	t.Setenv("SOME_TTL", "-5s")
	if got := getDuration("SOME_TTL", time.Minute); got != time.Minute {
		t.Errorf("negative duration accepted: %s", got)
	}
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel("info")

	SetLogLevel("debug")
	if GetLogger().GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s, want debug", GetLogger().GetLevel())
	}
	SetLogLevel("loud")
	if GetLogger().GetLevel() != logrus.DebugLevel {
		t.Errorf("unknown level should keep the current one, got %s", GetLogger().GetLevel())
	}
}
