package main

import (
	"os"
	"path/filepath"
	"testing"

	"curator/internal/config"
	"curator/internal/store/sqlitevec"
)

func TestImportThenScore(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "curator.yaml")
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "curator.db")
	cfg.Embedding.Provider = "none"
	cfg.LLM.Provider = "none"
	cfg.Logging.Level = "disabled"
	if err := config.Save(cfgFile, cfg); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CURATOR_DB", "")

	history := filepath.Join(dir, "history.jsonl")
	data := `{"videoId":"v1","channelId":"@a","watchTime":100,"totalDuration":100,"timestamp":1700000000000,"tags":["chess"]}
{"videoId":"v2","channelId":"@a","watchTime":50,"totalDuration":100,"timestamp":1700000100000}
`
	if err := os.WriteFile(history, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"--config", cfgFile, "import", history},
		{"--config", cfgFile, "score"},
		{"--config", cfgFile, "discover", "@a", "@new"},
		{"--config", cfgFile, "follow", "@new"},
	} {
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	db, err := sqlitevec.Open(cfg.Storage.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := t.Context()
	c, err := db.GetCreator(ctx, "@a")
	if err != nil {
		t.Fatal(err)
	}
	if c.Frequency != 2 || c.Keywords["chess"] != 1 {
		t.Fatalf("unexpected creator %+v", c)
	}
	sugs, err := db.GetSuggestions(ctx)
	if err != nil || len(sugs) != 1 || sugs[0].Status != "followed" {
		t.Fatalf("suggestions %+v %v", sugs, err)
	}
}
