package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/schema"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "list":
		handleList(os.Args[2:])
	case "lint":
		handleLint(os.Args[2:])
	case "summary":
		handleSummary(os.Args[2:])
	case "merge":
		handleMerge(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := `schema-lint - Validate and inspect knowledge graph schemas

Usage:
  schema-lint <command> [options]

Available Commands:
  list      List available schemas in the schemas directory
  lint      Parse schemas and report load-time errors
  summary   Print summary statistics for a schema
  merge     Merge schemas and print the combined summary
  help      Show this help message

Common Flags:
  -schemas DIR   Schemas directory (default: schemas)

Examples:
  schema-lint list
  schema-lint lint software_engineering infrastructure
  schema-lint summary software_engineering
  schema-lint merge software_engineering infrastructure
`
	fmt.Print(usage)
}

func newRegistry(dir string) *schema.Registry {
	return schema.NewRegistry(dir, logging.DefaultLogger())
}

func handleList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dir := fs.String("schemas", "schemas", "schemas directory")
	fs.Parse(args)

	names := newRegistry(*dir).ListAvailable()
	if len(names) == 0 {
		fmt.Println("No schemas found.")
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func handleLint(args []string) {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	dir := fs.String("schemas", "schemas", "schemas directory")
	fs.Parse(args)

	reg := newRegistry(*dir)
	names := fs.Args()
	if len(names) == 0 {
		names = reg.ListAvailable()
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "No schemas to lint.")
		os.Exit(1)
	}

	failed := 0
	for _, name := range names {
		def, err := reg.Load(name)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL  %s: %v\n", name, err)
			continue
		}
		fmt.Printf("OK    %s (%d entity types, %d relationship rules)\n",
			name, len(def.EntityTypes), len(def.Rules))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func handleSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	dir := fs.String("schemas", "schemas", "schemas directory")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: schema-lint summary [-schemas DIR] <name>")
		os.Exit(1)
	}

	s, err := newRegistry(*dir).Summarize(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printSummary(s)
}

func handleMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	dir := fs.String("schemas", "schemas", "schemas directory")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: schema-lint merge [-schemas DIR] <name> <name>...")
		os.Exit(1)
	}

	merged, err := newRegistry(*dir).Merge(fs.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printSummary(schema.Summarize(merged))
}

func printSummary(s *schema.Summary) {
	fmt.Printf("Schema:        %s (version %s)\n", s.Metadata.Name, s.Metadata.Version)
	if s.Metadata.Description != "" {
		fmt.Printf("Description:   %s\n", s.Metadata.Description)
	}
	fmt.Printf("Entity types:  %d (%d constrained, %d indexed)\n",
		s.EntityTypeCount, s.ConstrainedEntityCount, s.IndexedEntityCount)
	fmt.Printf("Relationships: %d rules, %d unique labels\n",
		s.RelationshipCount, s.UniqueLabelCount)

	categories := make([]string, 0, len(s.EntityCategories))
	for c := range s.EntityCategories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Printf("  %s:\n", c)
		for _, name := range s.EntityCategories[c] {
			fmt.Printf("    - %s\n", name)
		}
	}

	if len(s.RelationshipLabels) > 0 {
		fmt.Println("Labels:")
		for _, label := range s.RelationshipLabels {
			fmt.Printf("  - %s\n", label)
		}
	}
}
