package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/kr/pretty"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/reeflective/readline"
	"golang.org/x/term"

	"github.com/kocha-lang/kocha/core"
	"github.com/kocha-lang/kocha/logger"
	"github.com/kocha-lang/kocha/modules"
)

const version = "0.1.0"

const helpMessage = `kocha is a small scripting language with Uzbek keywords.

Usage:
  kocha [flags] <file>
  kocha [flags]          start the repl, or run stdin when it is not a terminal
`

var (
	debugAst      = flag.Bool("debug-ast", false, "print the parsed AST before running")
	configPath    = flag.String("config", "", "path to the YAML config (default $HOME/"+configFileName+")")
	logLevel      = flag.String("log-level", "", "log level: debug, info, warn or error")
	logFormat     = flag.String("log-format", "", "log format: text or json")
	seed          = flag.Int64("seed", 0, "seed for shara, 0 picks one from the clock")
	highlightPath = flag.String("highlight", "", "print FILE with syntax highlighting and exit")
	showVersion   = flag.Bool("version", false, "print the version and exit")
)

var (
	stdout = colorable.NewColorableStdout()
	stderr = colorable.NewColorableStderr()
)

var (
	logCloser io.Closer
	osExit    = os.Exit
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpMessage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Fprintf(stdout, "kocha %s\n", version)
		return
	}

	cfg, err := resolveConfig()
	if err != nil {
		fail(err)
	}
	color.NoColor = color.NoColor || !cfg.Color

	logCloser, err = initLogger(cfg)
	if err != nil {
		fail(err)
	}

	if *highlightPath != "" {
		content, err := os.ReadFile(*highlightPath)
		if err != nil {
			fail(err)
		}
		colored := cfg.Color && isatty.IsTerminal(os.Stdout.Fd())
		if err := highlightSource(stdout, string(content), cfg.Style, colored); err != nil {
			fail(err)
		}
		exit(0)
	}

	code := 0
	args := flag.Args()
	switch {
	case len(args) > 0:
		content, err := os.ReadFile(args[0])
		if err != nil {
			fail(err)
		}
		code = runSource(cfg, args[0], string(content))
	case !term.IsTerminal(int(os.Stdin.Fd())):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			fail(err)
		}
		code = runSource(cfg, "<stdin>", string(content))
	default:
		repl(cfg)
	}

	exit(code)
}

// resolveConfig layers the flags the user actually set over the config file.
func resolveConfig() (config, error) {
	path, explicit := *configPath, *configPath != ""
	if !explicit {
		path = defaultConfigPath()
	}

	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "seed":
			cfg.Seed = *seed
		}
	})

	return cfg, nil
}

func initLogger(cfg config) (io.Closer, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Output = stderr
	logCfg.Format = cfg.LogFormat
	logCfg.LogFile = cfg.LogFile

	if cfg.LogLevel != "" {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logCfg.Level = level
	}

	return logger.Init(logCfg)
}

func newContext(cfg config, rootPath string) *core.Context {
	context := core.NewContext(rootPath)
	context.Stdout = stdout
	context.Logger = slog.Default().With("file", rootPath)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		context.Stdin = terminalReader{}
	}

	s := cfg.Seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	context.Rand = rand.New(rand.NewSource(s))

	if err := modules.Initialize(&context); err != nil {
		fail(err)
	}

	return &context
}

func runSource(cfg config, path string, content string) int {
	program, err := core.Parse(content)
	if err != nil {
		printError(err, content)
		return 1
	}

	if *debugAst {
		pretty.Fprintf(stderr, "%# v\n", program)
	}

	context := newContext(cfg, path)
	env := core.CreateGlobalScope(context)

	start := time.Now()
	if _, err := core.Evaluate(context, program, env); err != nil {
		printError(err, content)
		return 1
	}
	slog.Debug("program finished", "file", path, "elapsed", time.Since(start))

	return 0
}

func repl(cfg config) {
	rl := readline.NewShell()
	rl.Prompt.Primary(func() string { return cfg.Prompt })
	rl.SyntaxHighlighter = highlight

	if cfg.HistoryFile != "" {
		rl.History.AddFromFile("kocha history", cfg.HistoryFile)
	}

	context := newContext(cfg, "<stdin>")
	env := core.CreateGlobalScope(context)

	bannerColor.Fprintf(stdout, "Kocha %s Repl\n", version)

	for {
		text, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			fmt.Fprintln(stderr, err)
			break
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if text == "exit" {
			break
		}

		program, err := core.Parse(text)
		if err != nil {
			printError(err, text)
			continue
		}

		if *debugAst {
			pretty.Fprintf(stderr, "%# v\n", program)
		}

		result, err := core.Evaluate(context, program, env)
		if err != nil {
			printError(err, text)
			continue
		}

		fmt.Fprintln(stdout, echo(result))
	}
}

// echo renders a REPL result; top-level strings are quoted so "1" and 1
// read differently.
func echo(value core.Value) string {
	if s, ok := value.(core.StringValue); ok {
		return strconv.Quote(string(s))
	}
	return value.String()
}

type contextualError interface {
	ErrorWithContext(source string) string
}

func printError(err error, source string) {
	var withContext contextualError
	if errors.As(err, &withContext) {
		errorColor.Fprintln(stderr, withContext.ErrorWithContext(source))
		return
	}
	errorColor.Fprintln(stderr, err.Error())
}

func fail(err error) {
	errorColor.Fprintln(stderr, err.Error())
	exit(1)
}

// exit is the only way out of the command once logging is set up, so the
// log file is always closed.
func exit(code int) {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
	osExit(code)
}
