// Program jdig reads a JSON document and prints the value found at a path.
//
// Usage:
//
//	jdig [flags] <file>
//
// If the file is "-" or omitted, the document is read from stdin. Without a
// path, the whole document is printed. For example:
//
//	jdig -path user.home.city -as string config.json
//	jdig -walk episodes.0 -reduce -indent catalog.json
//	jdig -jsonpath '$..host.name' catalog.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cabezudo/jtree/ast"
	"github.com/cabezudo/jtree/ast/cursor"
	"github.com/cabezudo/jtree/query"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

// errUsage is reported for invalid command-line arguments.
var errUsage = errors.New("usage")

// converters map the names accepted by -as to conversions.
var converters = map[string]func(ast.Value) (any, error){
	"bool":    wrap(ast.AsBool),
	"int":     wrap(ast.AsInt64),
	"float":   wrap(ast.AsFloat64),
	"string":  wrap(ast.AsString),
	"strings": wrap(ast.AsStrings),
	"time":    wrap(ast.AsTime),
	"decimal": wrap(ast.AsDecimal),
}

func wrap[T any](f func(ast.Value) (T, error)) func(ast.Value) (any, error) {
	return func(v ast.Value) (any, error) { return f(v) }
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		debugLogging bool
		encoding     string
		digPath      string
		walkPath     string
		jsonPath     string
		asType       string
		reduce       bool
		indent       bool
		opts         ast.Options
	)
	fs := flag.NewFlagSet("jdig", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&debugLogging, "debug", false, "Enable debug logging")
	fs.StringVar(&encoding, "encoding", "", "Character encoding of the input (default UTF-8)")
	fs.StringVar(&digPath, "path", "", "Dot-separated path of object keys to print")
	fs.StringVar(&walkPath, "walk", "", "Dot-separated path of keys and array offsets to print")
	fs.StringVar(&jsonPath, "jsonpath", "", "JSONPath expression selecting an array of results")
	fs.StringVar(&asType, "as", "", "Convert the result to this type (bool, int, float, string, strings, time, decimal)")
	fs.BoolVar(&reduce, "reduce", false, "Print the referenced form of the result")
	fs.BoolVar(&indent, "indent", false, "Pretty-print the result")
	fs.BoolVar(&opts.AllowComments, "comments", false, "Allow comments and trailing commas in the input")
	fs.IntVar(&opts.MaxDepth, "max-depth", 0, "Maximum nesting depth of the input (0 means the default, negative means no limit)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: at most one input file may be given", errUsage)
	} else if countSet(digPath, walkPath, jsonPath) > 1 {
		return fmt.Errorf("%w: -path, -walk, and -jsonpath are mutually exclusive", errUsage)
	}
	conv, ok := converters[asType]
	if asType != "" && !ok {
		return fmt.Errorf("%w: unknown -as type %q", errUsage, asType)
	}

	logger := newLogger(stderr, debugLogging)
	opts.Logger = logger

	start := time.Now()
	root, err := parseInput(opts, fs.Arg(0), encoding, stdin)
	if err != nil {
		return err
	}
	logger.V(1).Info("parsed input", "kind", root.Kind().String(), "elapsed", time.Since(start))

	v, err := selectValue(root, digPath, walkPath, jsonPath)
	if err != nil {
		return err
	}
	if reduce {
		v, err = ast.Reduce(v)
		if err != nil {
			return err
		}
	}
	if conv != nil {
		out, err := conv(v)
		if err != nil {
			return err
		}
		if t, ok := out.(time.Time); ok {
			out = t.Format(ast.TimeLayout)
		}
		_, err = fmt.Fprintln(stdout, out)
		return err
	}
	if indent {
		if err := ast.Format(stdout, v); err != nil {
			return err
		}
	} else if _, err := io.WriteString(stdout, v.JSON()); err != nil {
		return err
	}
	_, err = io.WriteString(stdout, "\n")
	return err
}

func newLogger(w io.Writer, debug bool) logr.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zapr.NewLogger(zap.New(core))
}

func parseInput(opts ast.Options, path, encoding string, stdin io.Reader) (ast.Value, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, &ast.ReadError{Path: "<stdin>", Err: err}
		}
		return opts.ParseEncoded(data, encoding)
	}
	return opts.ParseFile(path, encoding)
}

func countSet(ss ...string) (n int) {
	for _, s := range ss {
		if s != "" {
			n++
		}
	}
	return n
}

func selectValue(root ast.Value, digPath, walkPath, jsonPath string) (ast.Value, error) {
	switch {
	case digPath != "":
		obj, err := ast.AsObject(root)
		if err != nil {
			return nil, fmt.Errorf("-path requires an object: %w", err)
		}
		return obj.Dig(digPath)

	case walkPath != "":
		steps, err := cursor.ParsePath(walkPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		c := cursor.New(root).Down(steps...)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("walk %q: %w", walkPath, err)
		}
		return c.Value(), nil

	case jsonPath != "":
		q, err := query.JSONPath(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid JSONPath: %v", errUsage, err)
		}
		return query.Eval(root, q)
	}
	return root, nil
}
