package postgres

import (
	"testing"
	"time"

	"github.com/alanyoungcy/skinscout/internal/domain"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
		want string
	}{
		{"explicit dsn", ClientConfig{DSN: "postgres://x"}, "postgres://x"},
		{"defaults", ClientConfig{Host: "db", User: "u", Password: "p", Database: "skinscout"}, "postgres://u:p@db:5432/skinscout?sslmode=disable"},
		{"ssl", ClientConfig{Host: "db", Port: 6543, User: "u", Database: "d", SSLMode: "require"}, "postgres://u:@db:6543/d?sslmode=require"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.cfg); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListClause(t *testing.T) {
	since := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	tail, args := listClause(domain.ListOpts{Since: &since, Limit: 10, Offset: 20}, "detected_at", []any{"item"})
	want := " AND detected_at >= $2 ORDER BY detected_at DESC LIMIT $3 OFFSET $4"
	if tail != want {
		t.Errorf("tail = %q\nwant %q", tail, want)
	}
	if len(args) != 4 || args[0] != "item" || args[2] != 10 || args[3] != 20 {
		t.Errorf("args = %v", args)
	}

	tail, args = listClause(domain.ListOpts{}, "created_at", nil)
	if tail != " ORDER BY created_at DESC" || len(args) != 0 {
		t.Errorf("empty opts: %q %v", tail, args)
	}
}

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) < 2 || names[0] != "001_init.sql" || names[1] != "002_trend_snapshots.sql" {
		t.Errorf("migrationNames() = %v", names)
	}
}
