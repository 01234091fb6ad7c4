package database

import (
	"testing"

	"wdmmg/internal/config"
	"wdmmg/internal/logger"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{"postgres", "postgres", false},
		{"mysql", "mysql", false},
		{"sqlite", "sqlite", false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBDriver: tt.driver, DBPath: ":memory:"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Name() != tt.name {
				t.Errorf("dialector name = %q, want %q", d.Name(), tt.name)
			}
		})
	}
}

func TestManager_SQLiteAutoMigrate(t *testing.T) {
	logger.Init("test")

	m, err := NewManager(&config.Config{DBDriver: "sqlite", DBPath: "file:dbmanager?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	for _, table := range []string{"users", "user_profiles", "transactions", "budgets", "refresh_tokens", "audit_logs"} {
		if !m.DB().Migrator().HasTable(table) {
			t.Errorf("expected table %q", table)
		}
	}
}
