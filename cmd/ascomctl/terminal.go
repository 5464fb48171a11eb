package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/localnerve/ascom-demandas/internal/client"
)

type globalOptions struct {
	apiURL string
	outDir string
	yes    bool
}

func parseGlobal(args []string) (globalOptions, []string, error) {
	opts := globalOptions{}
	fs := flag.NewFlagSet("ascomctl", flag.ContinueOnError)
	defaultURL := os.Getenv("ASCOM_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8001"
	}
	fs.StringVar(&opts.apiURL, "api", defaultURL, "API base URL")
	fs.StringVar(&opts.outDir, "o", ".", "directory for downloaded PDFs")
	fs.BoolVar(&opts.yes, "y", false, "answer yes to confirmations")
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	return opts, fs.Args(), nil
}

type stderrNotifier struct{}

func (stderrNotifier) Success(message string) { fmt.Fprintln(os.Stderr, "✓ "+message) }
func (stderrNotifier) Error(message string)   { fmt.Fprintln(os.Stderr, "✗ "+message) }

// stdoutClipboard prints the text for the user to copy from the terminal.
type stdoutClipboard struct{}

func (stdoutClipboard) Copy(text string) bool {
	fmt.Println(text)
	return true
}

type fileDownloader struct {
	dir string
}

func (d fileDownloader) Save(dl *client.Download) error {
	name := filepath.Base(dl.Filename)
	if name == "." || name == "/" || name == "" {
		name = "download.pdf"
	}
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Saved "+path)
	return nil
}

func stdinConfirm(yes bool) func(string) bool {
	return func(prompt string) bool {
		if yes {
			return true
		}
		fmt.Fprintf(os.Stderr, "%s [s/N] ", prompt)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "s" || answer == "sim" || answer == "y" || answer == "yes"
	}
}

// readUploads loads each comma separated path into memory.
func readUploads(paths string) ([]client.Upload, error) {
	var uploads []client.Upload
	for _, p := range strings.Split(paths, ",") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		u, err := readUpload(p)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *u)
	}
	return uploads, nil
}

func readUpload(path string) (*client.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &client.Upload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     bytes.NewReader(data),
	}, nil
}

// parseCommand parses flags that may appear after positional arguments.
func parseCommand(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	return positional, nil
}
