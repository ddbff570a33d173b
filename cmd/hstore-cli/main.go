package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-hstore"
	"github.com/goliatone/go-hstore/internal/logging"
	pkgopenapi "github.com/goliatone/go-hstore/pkg/openapi"
	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/tui"
	"github.com/goliatone/go-hstore/pkg/widget"
	"github.com/goliatone/go-hstore/pkg/widgets"
)

const fetchTimeout = 10 * time.Second

type options struct {
	config      string
	name        string
	label       string
	help        string
	value       string
	file        string
	schema      string
	operation   string
	interactive bool
	output      string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("hstore: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	engineOpts := []hstore.Option{}
	if opts.config != "" {
		engineOpts = append(engineOpts, hstore.WithConfigFile(opts.config))
	}
	engine, err := hstore.New(engineOpts...)
	if err != nil {
		return err
	}
	logger := engine.Logger(logging.CLIModule)

	doc, err := buildDocument(ctx, opts)
	if err != nil {
		return err
	}

	instances, err := engine.BindAll(doc)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		return errors.New("no hstore fields found")
	}
	logger.Debug("hstore widgets bound", "count", len(instances))

	var out string
	if opts.interactive {
		out, err = edit(ctx, instances, doc, stdout)
	} else {
		out, err = render(instances)
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		_, err := fmt.Fprintf(stdout, "Output written to %s\n", opts.output)
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("hstore-cli", flag.ContinueOnError)
	fs.StringVar(&opts.config, "config", "", "YAML configuration file")
	fs.StringVar(&opts.name, "name", "data", "field name")
	fs.StringVar(&opts.label, "label", "Data", "field label")
	fs.StringVar(&opts.help, "help", "", "field help text")
	fs.StringVar(&opts.value, "value", "", "initial raw JSON value")
	fs.StringVar(&opts.file, "file", "", "read the initial raw JSON value from a file")
	fs.StringVar(&opts.schema, "schema", "", "OpenAPI document path or URL to discover hstore fields from")
	fs.StringVar(&opts.operation, "operation", "", "operation ID to discover fields for (all when empty)")
	fs.BoolVar(&opts.interactive, "interactive", false, "edit the fields in the terminal and print the resulting JSON")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return options{}, fmt.Errorf("read value file: %w", err)
		}
		opts.value = string(data)
	}
	return opts, nil
}

func buildDocument(ctx context.Context, opts options) (*page.Document, error) {
	if strings.TrimSpace(opts.schema) != "" {
		src, err := pkgopenapi.SourceFor(opts.schema)
		if err != nil {
			return nil, err
		}
		loader := hstore.NewLoader(pkgopenapi.WithHTTPFallback(fetchTimeout))
		return hstore.DocumentFromOpenAPI(ctx, loader, src, opts.operation)
	}

	doc := page.New()
	_, err := doc.AddField(page.FieldSpec{
		Name:    opts.name,
		Value:   opts.value,
		Label:   opts.label,
		Help:    opts.help,
		Classes: []string{widgets.HStoreClass},
	})
	return doc, err
}

func render(instances []*widget.Instance) (string, error) {
	parts := make([]string, 0, len(instances))
	for _, inst := range instances {
		markup, err := inst.Render()
		if err != nil {
			return "", fmt.Errorf("render %s: %w", inst.FieldName(), err)
		}
		parts = append(parts, markup)
	}
	return strings.Join(parts, "\n"), nil
}

func edit(ctx context.Context, instances []*widget.Instance, doc *page.Document, stdout io.Writer) (string, error) {
	editor := tui.New(tui.WithOutput(stdout), tui.WithTheme(tui.Theme{ErrorPrefix: "! "}))
	for _, inst := range instances {
		if _, err := editor.Run(ctx, inst); err != nil {
			return "", fmt.Errorf("edit %s: %w", inst.FieldName(), err)
		}
	}

	values := doc.Submit()
	if len(instances) == 1 {
		return values.Get(instances[0].FieldName()), nil
	}
	parts := make([]string, 0, len(instances))
	for _, inst := range instances {
		parts = append(parts, inst.FieldName()+": "+values.Get(inst.FieldName()))
	}
	return strings.Join(parts, "\n"), nil
}
