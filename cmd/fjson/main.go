package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	fjson "github.com/mcncl/fjson"
	"github.com/mcncl/fjson/internal/config"
	"github.com/mcncl/fjson/internal/errors"
	"github.com/mcncl/fjson/repair"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config      string `help:"Path to a YAML config file. Defaults to the nearest .fjson.yml." short:"c" type:"path"`
	Strict      bool   `help:"Accept only standard JSON, disabling every forgiving extension."`
	NoComments  bool   `help:"Reject // and # and /* */ comments." name:"no-comments"`
	NoTrailing  bool   `help:"Reject trailing commas." name:"no-trailing-commas"`
	NoUnquoted  bool   `help:"Reject unquoted object keys." name:"no-unquoted-keys"`
	NoSingle    bool   `help:"Reject single-quoted strings." name:"no-single-quotes"`
	NoImplicit  bool   `help:"Reject implicit top-level objects and arrays." name:"no-implicit-top-level"`
	NoNewline   bool   `help:"Treat newlines as plain whitespace, not separators." name:"no-newline-as-comma"`
	MaxDepth    int    `help:"Maximum nesting depth. 0 means the default (128)."`
	Pretty      bool   `help:"Indent the output instead of printing compact JSON." short:"p"`
	Repair      bool   `help:"On parse failure, attempt automatic repair before giving up." short:"r"`
	Suggest     bool   `help:"On parse failure, print repair suggestions instead of attempting them." short:"s"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug bool
	Cfg   *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("fjson"),
		kong.Description("A forgiving JSON parser: reads JSON with comments, trailing commas, unquoted keys and friends, and emits standard JSON."),
		kong.UsageOnError(),
	)

	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	_, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Usage is already shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("fjson version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	err = run(&Context{Debug: CLI.Debug || cfg.Dev.Debug, Cfg: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: fjson --help\n")
		os.Exit(1)
	}
}

// loadConfig resolves the config file: an explicit --config path must
// exist, otherwise the nearest .fjson.yml is used when present.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return config.NewConfig(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to load config from '%s'", path), err)
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	input, err := readInput()
	if err != nil {
		return err
	}

	opts := resolveOptions(ctx.Cfg)
	if ctx.Debug {
		fmt.Fprintf(os.Stderr, "fjson: options %+v\n", opts)
	}

	value, err := fjson.ParseWithOptions(input, opts)
	if err != nil {
		return handleParseFailure(ctx, input, opts, err)
	}

	return writeOutput(ctx, value)
}

// resolveOptions layers CLI flags over the config file settings.
func resolveOptions(cfg *config.Config) fjson.Options {
	opts := cfg.Options()
	if CLI.Strict {
		maxDepth := opts.MaxDepth
		opts = fjson.StrictOptions()
		opts.MaxDepth = maxDepth
	}
	if CLI.NoComments {
		opts.AllowComments = false
	}
	if CLI.NoTrailing {
		opts.AllowTrailingCommas = false
	}
	if CLI.NoUnquoted {
		opts.AllowUnquotedKeys = false
	}
	if CLI.NoSingle {
		opts.AllowSingleQuotes = false
	}
	if CLI.NoImplicit {
		opts.ImplicitTopLevel = false
	}
	if CLI.NoNewline {
		opts.NewlineAsComma = false
	}
	if CLI.MaxDepth > 0 {
		opts.MaxDepth = CLI.MaxDepth
	}
	return opts
}

// handleParseFailure prints a diagnostic and, depending on flags,
// suggestions or the result of an automatic repair.
func handleParseFailure(ctx *Context, input string, opts fjson.Options, parseErr error) error {
	if CLI.Suggest {
		printDiagnostic(input, parseErr)
		for i, s := range repair.Suggest(input, parseErr) {
			fmt.Fprintf(os.Stderr, "suggestion %d [%s, confidence %.2f]: %s\n",
				i+1, s.Strategy, s.Confidence, s.Rationale)
			fmt.Fprintf(os.Stderr, "  replace bytes %d..%d with %q\n",
				s.Span.Start, s.Span.End, s.Replacement)
		}
		return errors.NewParsingError(parseErr.Error(), parseErr)
	}

	repairEnabled := CLI.Repair || ctx.Cfg.Repair.Enabled
	if repairEnabled {
		attempts := ctx.Cfg.Repair.MaxAttempts
		value, err := repair.AutoRepair(input, opts, attempts)
		if err == nil {
			fmt.Fprintln(os.Stderr, "fjson: input repaired automatically")
			return writeOutput(ctx, value)
		}
		printDiagnostic(input, err)
		return errors.NewRepairError(fmt.Sprintf("gave up after %d attempt(s)", attempts), errors.ErrNotRepairable)
	}

	printDiagnostic(input, parseErr)
	return errors.NewParsingError(parseErr.Error(), parseErr)
}

// printDiagnostic writes the caret diagnostic for a parse error when
// one is available.
func printDiagnostic(input string, err error) {
	var perr *fjson.ParseError
	if !stderrors.As(err, &perr) {
		return
	}
	fmt.Fprintln(os.Stderr, perr.Diagnostic(input))
}

// readInput reads the document from file or stdin
func readInput() (string, error) {
	if CLI.Input != "" {
		data, err := os.ReadFile(CLI.Input)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NewInputError(fmt.Sprintf("file '%s' not found", CLI.Input), errors.ErrFileNotFound)
			}
			return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", CLI.Input), err)
		}
		return string(data), nil
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	return string(data), nil
}

// writeOutput writes the value to file or stdout
func writeOutput(ctx *Context, value fjson.Value) error {
	out := value.CompactJSON()
	if CLI.Pretty || ctx.Cfg.Output.Pretty {
		out = value.IndentJSON(ctx.Cfg.Output.Indent)
	}

	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(out+"\n"), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Println(out)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste
// a document and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "fjson Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your document below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			builder.WriteString(line)
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
		builder.WriteString(line)
	}

	if builder.Len() == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing...")
	return builder.String(), nil
}
