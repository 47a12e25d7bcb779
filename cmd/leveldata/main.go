// Level data tool: inspects, validates and normalizes level description files.
//
// Usage:
//
//	go run ./cmd/leveldata list [levels.yaml]              # list levels (bundled when no file)
//	go run ./cmd/leveldata validate [levels.yaml]          # report malformed levels
//	go run ./cmd/leveldata normalize in.json out.yaml      # rewrite a YAML or JSON file in canonical YAML
//	go run ./cmd/leveldata --list                          # list available commands
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/udisondev/gtfoseed/internal/level"
)

type command struct {
	name string
	desc string
	run  func(args []string, out io.Writer) error
}

var commands []command

func registerCommand(name, desc string, fn func(args []string, out io.Writer) error) {
	commands = append(commands, command{name: name, desc: desc, run: fn})
}

func init() {
	registerCommand("list", "List levels with zone and objective counts", listLevels)
	registerCommand("validate", "Validate every level and report problems", validateLevels)
	registerCommand("normalize", "Rewrite a levels file in canonical YAML", normalizeLevels)
}

func main() {
	args := os.Args[1:]

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "--list" {
		printList(os.Stdout)
		return
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printList(os.Stderr)
		os.Exit(1)
	}

	if err := cmd.run(args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "[leveldata] %s FAILED: %v\n", cmd.name, err)
		os.Exit(1)
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func openCatalog(args []string) (*level.Catalog, error) {
	switch len(args) {
	case 0:
		return level.Default()
	case 1:
		return level.LoadFile(args[0])
	default:
		return nil, fmt.Errorf("expected at most one levels file, got %d arguments", len(args))
	}
}

func listLevels(args []string, out io.Writer) error {
	catalog, err := openCatalog(args)
	if err != nil {
		return err
	}

	for _, name := range catalog.Names() {
		lvl, _ := catalog.Get(name)
		if len(lvl.Consumers) > 0 {
			fmt.Fprintf(out, "%-10s consumers=%d\n", name, len(lvl.Consumers))
			continue
		}
		objectives := 0
		for _, o := range lvl.StagedObjectives {
			if o != nil {
				objectives++
			}
		}
		fmt.Fprintf(out, "%-10s zones=%d objectives=%d walk_capacity=%t\n",
			name, len(lvl.Zones), objectives, lvl.WalkCapacity)
	}
	return nil
}

func validateLevels(args []string, out io.Writer) error {
	catalog, err := openCatalog(args)
	if err != nil {
		return err
	}

	failed := 0
	for _, name := range catalog.Names() {
		lvl, _ := catalog.Get(name)
		if err := lvl.Validate(); err != nil {
			failed++
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "%s: %s\n", name, line)
			}
		}
	}

	fmt.Fprintf(out, "[leveldata] %d levels, %d malformed\n", catalog.Len(), failed)
	if failed > 0 {
		return fmt.Errorf("%d malformed levels", failed)
	}
	return nil
}

func normalizeLevels(args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: normalize <in> <out>")
	}

	catalog, err := level.LoadFile(args[0])
	if err != nil {
		return err
	}
	data, err := catalog.Marshal()
	if err != nil {
		return err
	}

	header := "# Generated by leveldata normalize. DO NOT EDIT.\n"
	if err := os.WriteFile(args[1], append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}
	fmt.Fprintf(out, "[leveldata] wrote %d levels to %s\n", catalog.Len(), args[1])
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/leveldata <command> [args]")
	fmt.Fprintln(os.Stderr, "       go run ./cmd/leveldata --list")
}

func printList(out io.Writer) {
	names := make([]string, 0, len(commands))
	maxLen := 0
	for _, c := range commands {
		names = append(names, c.name)
		if len(c.name) > maxLen {
			maxLen = len(c.name)
		}
	}
	sort.Strings(names)

	fmt.Fprintln(out, "Available commands:")
	for _, name := range names {
		c, _ := lookup(name)
		padding := strings.Repeat(" ", maxLen-len(name)+2)
		fmt.Fprintf(out, "  %s%s%s\n", name, padding, c.desc)
	}
}
