package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/localnerve/ascom-demandas/internal/client"
)

func TestParseCommandInterleaved(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	links := fs.String("links", "", "")
	pos, err := parseCommand(fs, []string{"abc", "-links", "https://x.example", "extra"})
	if err != nil {
		t.Fatalf("parseCommand failed: %v", err)
	}
	if len(pos) != 2 || pos[0] != "abc" || pos[1] != "extra" {
		t.Errorf("Unexpected positional args %v", pos)
	}
	if *links != "https://x.example" {
		t.Errorf("Expected links flag parsed, got %q", *links)
	}
}

func TestParseGlobal(t *testing.T) {
	t.Setenv("ASCOM_API_URL", "http://api.example")
	opts, args, err := parseGlobal([]string{"-y", "demandas", "list"})
	if err != nil {
		t.Fatalf("parseGlobal failed: %v", err)
	}
	if !opts.yes || opts.apiURL != "http://api.example" {
		t.Errorf("Unexpected options %+v", opts)
	}
	if len(args) != 2 || args[0] != "demandas" {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestReadUploads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arte.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	uploads, err := readUploads(" " + path + " , ")
	if err != nil {
		t.Fatalf("readUploads failed: %v", err)
	}
	if len(uploads) != 1 || uploads[0].Filename != "arte.png" || uploads[0].ContentType != "image/png" {
		t.Errorf("Unexpected uploads %+v", uploads)
	}

	if _, err := readUploads(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestFileDownloaderUsesBaseName(t *testing.T) {
	dir := t.TempDir()
	d := fileDownloader{dir: dir}
	if err := d.Save(&client.Download{Filename: "../../relatorio_03-2024.pdf", Data: []byte("%PDF-")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "relatorio_03-2024.pdf")); err != nil {
		t.Errorf("Expected file inside the output dir: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Ação curta", 20); got != "Ação curta" {
		t.Errorf("Unexpected %q", got)
	}
	if got := truncate("Divulgação", 5); got != "Divu…" {
		t.Errorf("Unexpected %q", got)
	}
}
