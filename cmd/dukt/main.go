package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/wippyai/dukt/runtime"
)

const version = "0.1.0"

func main() {
	var (
		configFile  = flag.String("config", "", "Path to a TOML config file")
		timeout     = flag.Duration("timeout", 0, "Per-evaluation timeout (overrides config)")
		stack       = flag.Int("stack", 0, "Maximum script call depth (overrides config)")
		logLevel    = flag.String("log", "", "Log level: debug, info, warn, error (overrides config)")
		expr        = flag.String("e", "", "Evaluate a script and print the result")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dukt [flags] [file.js ...]")
		fmt.Fprintln(os.Stderr, "       dukt -e '1 + 2'")
		fmt.Fprintln(os.Stderr, "       dukt -i  (interactive mode)")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configFile, *timeout, *stack, *logLevel)
	if err != nil {
		fail(err)
	}

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	if *interactive || (flag.NArg() == 0 && *expr == "" && stdinTTY) {
		if err := runInteractive(cfg, flag.Args()); err != nil {
			fail(err)
		}
		return
	}

	if err := run(cfg, flag.Args(), *expr, os.Stdin, os.Stdout); err != nil {
		fail(err)
	}
}

func fail(err error) {
	prettyError(os.Stderr, err)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

// loadConfig reads path when set and applies flag overrides.
func loadConfig(path string, timeout time.Duration, stack int, logLevel string) (*runtime.Config, error) {
	cfg := runtime.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = runtime.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if stack > 0 {
		cfg.MaxCallStack = stack
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, cfg.Validate()
}

// newRuntime creates a runtime writing print output to out, with the
// dukt host namespace bound.
func newRuntime(cfg *runtime.Config, out io.Writer, args []string) (*runtime.Runtime, error) {
	rt, err := runtime.New(cfg, runtime.WithOutput(out))
	if err != nil {
		return nil, err
	}
	if err := rt.RegisterHost(&cliHost{args: args}); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

// run evaluates the files in order, then expr. With neither, the script
// is read from stdin.
func run(cfg *runtime.Config, files []string, expr string, stdin io.Reader, stdout io.Writer) error {
	ctx := context.Background()

	rt, err := newRuntime(cfg, stdout, files)
	if err != nil {
		return err
	}
	defer rt.Close()

	for _, f := range files {
		if err := rt.RunFile(ctx, f); err != nil {
			return err
		}
	}

	if expr == "" && len(files) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		expr = string(src)
	}
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	out, err := evalLine(ctx, rt, expr)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

// evalLine evaluates src and renders its completion value.
func evalLine(ctx context.Context, rt *runtime.Runtime, src string) (string, error) {
	c := rt.Context()
	err := rt.Run(ctx, src)
	defer c.Pop()
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	prettyPrint(&b, c, -1)
	return b.String(), nil
}

// cliHost exposes process details to scripts as the dukt global.
type cliHost struct {
	args []string
}

func (h *cliHost) Namespace() string { return "dukt" }

func (h *cliHost) Version() string { return version }

func (h *cliHost) Args() []string { return h.args }

func (h *cliHost) Env(name string) string { return os.Getenv(name) }
