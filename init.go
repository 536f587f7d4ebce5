package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/phobologic/partials/internal/config"
)

const configHeader = `# partials configuration.
#
# start/end are the tag templates; start must contain {{path}} once.
# Referenced paths are resolved relative to the referencing file, after
# prefix is prepended. exclude takes gitignore-style patterns of files
# that are partials rather than documents.
`

// runInit implements the `partials init` subcommand, which writes a default
// configuration file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("partials init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun, force bool
	fs.BoolVar(&dryRun, "dry-run", false, "print the configuration without writing it")
	fs.BoolVar(&force, "force", false, "overwrite an existing configuration file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: partials init [flags] [dir-or-file]

Write a default %s. A directory argument writes the file inside it;
defaults to the current directory.

Flags:
`, config.FileName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	content, err := generateConfig()
	if err != nil {
		return err
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	path := config.FileName
	if fs.NArg() > 0 {
		path = fs.Arg(0)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, config.FileName)
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
	return nil
}

// generateConfig returns the commented default configuration.
func generateConfig() (string, error) {
	cfg := config.Default()
	cfg.Exclude = []string{"partials/"}
	cfg.Out = "dist"

	data, err := cfg.Marshal()
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return configHeader + "\n" + string(data), nil
}
