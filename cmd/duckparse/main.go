package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/i64/duckparse"
	"github.com/i64/duckparse/export"
	"github.com/i64/duckparse/gallery/tga"
	"github.com/i64/duckparse/gallery/wasm"
	"github.com/i64/duckparse/gallery/zip"
	"github.com/i64/duckparse/parse"
	"github.com/i64/duckparse/schema"
)

var formats = map[string]duckparse.Format{
	tga.Format.Name():  tga.Format,
	zip.Format.Name():  zip.Format,
	wasm.Format.Name(): wasm.Format,
}

type options struct {
	format      string
	schemaFile  string
	out         string
	interactive bool
	verify      bool
}

func main() {
	var (
		formatName  = flag.String("format", "", "Built-in format ("+strings.Join(formatNames(), ", ")+")")
		schemaFile  = flag.String("schema", "", "Path to a YAML schema document")
		out         = flag.String("out", "text", "Output encoding: text, json or cbor")
		interactive = flag.Bool("i", false, "Browse the decoded tree with a TUI")
		verify      = flag.Bool("verify", false, "Cross-check wasm function exports with wazero")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
	)
	flag.Parse()

	if flag.NArg() != 1 || (*formatName == "") == (*schemaFile == "") {
		fmt.Fprintln(os.Stderr, "Usage: duckparse -format <name> [-out text|json|cbor] [-verify] <file>")
		fmt.Fprintln(os.Stderr, "       duckparse -schema <file.yaml> [-out text|json|cbor] <file>")
		fmt.Fprintln(os.Stderr, "       duckparse -format <name> -i <file>  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		parse.SetLogger(logger)
		schema.SetLogger(logger)
	}

	opts := options{
		format:      *formatName,
		schemaFile:  *schemaFile,
		out:         *out,
		interactive: *interactive,
		verify:      *verify,
	}
	if err := run(opts, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func formatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolveFormat(opts options) (duckparse.Format, error) {
	if opts.schemaFile != "" {
		s, err := schema.LoadFile(opts.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("load schema: %w", err)
		}
		return s, nil
	}
	f, ok := formats[opts.format]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (known: %s)", opts.format, strings.Join(formatNames(), ", "))
	}
	return f, nil
}

func run(opts options, filename string) error {
	format, err := resolveFormat(opts)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if opts.verify {
		if format.Name() != wasm.Format.Name() {
			return fmt.Errorf("-verify applies to the wasm format only")
		}
		if err := wasm.VerifyExports(context.Background(), data); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
	}

	inst, err := format.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", format.Name(), err)
	}

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal on stdout")
		}
		return runInteractive(filename, inst)
	}

	return write(opts.out, inst)
}

func write(out string, inst *parse.Instance) error {
	switch out {
	case "text":
		_, err := fmt.Println(inst)
		return err
	case "json":
		b, err := export.JSON(inst)
		if err != nil {
			return err
		}
		_, err = fmt.Printf("%s\n", b)
		return err
	case "cbor":
		b, err := export.CBOR(inst)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(b)
		return err
	}
	return fmt.Errorf("unknown output %q", out)
}
