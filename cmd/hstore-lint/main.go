package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-hstore"
	pkgopenapi "github.com/goliatone/go-hstore/pkg/openapi"
)

type violation struct {
	file string
	pkgopenapi.Violation
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint OpenAPI documents for misused hstore markers.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	loader := hstore.NewLoader()

	var violations []violation
	for _, path := range paths {
		doc, err := loader.Load(ctx, pkgopenapi.SourceFromFile(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		linted, err := pkgopenapi.Lint(ctx, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		for _, v := range linted {
			violations = append(violations, violation{file: path, Violation: v})
		}
	}

	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s\n", v.file, v.String())
		}
		os.Exit(1)
	}
}
