package cli

import (
	"path/filepath"
	"testing"
	"time"

	"facegreeter/internal/model"
	"facegreeter/internal/repository/sqlite"
)

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "enroll", "import", "visits"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected %s command, got %v (err %v)", name, cmd, err)
		}
	}
}

func TestVisitsCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "visits.db")

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	repo := sqlite.NewVisitRepository(db)
	if _, err := repo.Insert(&model.Visit{EventID: "e1", Name: "Alice", Known: true, Greeting: "hi", Timestamp: time.Now()}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	db.Close()

	tests := [][]string{
		{"visits", "--db", dbPath},
		{"visits", "--db", dbPath, "--stats"},
		{"visits", "--db", dbPath, "--name", "Alice", "--json"},
	}
	for _, args := range tests {
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("%v failed: %v", args, err)
		}
	}
}
