// Package cli runs one catalog report or maintenance task per invocation.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/samber/lo"

	"pollex.nl/bookshop/bookshop"
	"pollex.nl/bookshop/config"
)

var errUsage = errors.New("usage")

type command struct {
	usage    string
	nargs    int  // -1 means any number, joined with spaces
	optional bool // the nargs arguments may also be left out
	run      func(ctx context.Context, s *bookshop.Store, args []string) (string, error)
}

var commands = map[string]command{
	"init": {
		usage:    "init [fixture.yaml]",
		nargs:    1,
		optional: true,
		run:      runInit,
	},
	"age-restriction": {
		usage: "age-restriction <minor|teen|adult>",
		nargs: 1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			return s.BooksByAgeRestriction(ctx, args[0])
		},
	},
	"golden": {
		usage: "golden",
		run: func(ctx context.Context, s *bookshop.Store, _ []string) (string, error) {
			return s.GoldenBooks(ctx)
		},
	},
	"by-price": {
		usage: "by-price",
		run: func(ctx context.Context, s *bookshop.Store, _ []string) (string, error) {
			return s.BooksByPrice(ctx)
		},
	},
	"not-released-in": {
		usage: "not-released-in <year>",
		nargs: 1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("%w: year %q is not a number", errUsage, args[0])
			}
			return s.BooksNotReleasedIn(ctx, year)
		},
	},
	"by-category": {
		usage: "by-category <category>...",
		nargs: -1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			return s.BooksByCategory(ctx, strings.Join(args, " "))
		},
	},
	"released-before": {
		usage: "released-before <dd-MM-yyyy>",
		nargs: 1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			return s.BooksReleasedBefore(ctx, args[0])
		},
	},
	"authors-ending-in": {
		usage: "authors-ending-in <suffix>",
		nargs: 1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			return s.AuthorNamesEndingIn(ctx, args[0])
		},
	},
	"titles-containing": {
		usage: "titles-containing <text>",
		nargs: 1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			return s.BookTitlesContaining(ctx, args[0])
		},
	},
	"by-author": {
		usage: "by-author <last name prefix>",
		nargs: 1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			return s.BooksByAuthor(ctx, args[0])
		},
	},
	"count-books": {
		usage: "count-books <length>",
		nargs: 1,
		run: func(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
			length, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("%w: length %q is not a number", errUsage, args[0])
			}
			n, err := s.CountBooks(ctx, length)
			return strconv.Itoa(n), err
		},
	},
	"copies-by-author": {
		usage: "copies-by-author",
		run: func(ctx context.Context, s *bookshop.Store, _ []string) (string, error) {
			return s.CountCopiesByAuthor(ctx)
		},
	},
	"profit-by-category": {
		usage: "profit-by-category",
		run: func(ctx context.Context, s *bookshop.Store, _ []string) (string, error) {
			return s.TotalProfitByCategory(ctx)
		},
	},
	"most-recent": {
		usage: "most-recent",
		run: func(ctx context.Context, s *bookshop.Store, _ []string) (string, error) {
			return s.MostRecentBooks(ctx)
		},
	},
	"increase-prices": {
		usage: "increase-prices",
		run: func(ctx context.Context, s *bookshop.Store, _ []string) (string, error) {
			n, err := s.IncreasePrices(ctx)
			return fmt.Sprintf("%d books updated", n), err
		},
	},
	"remove-books": {
		usage: "remove-books",
		run: func(ctx context.Context, s *bookshop.Store, _ []string) (string, error) {
			n, err := s.RemoveBooks(ctx)
			return fmt.Sprintf("%d books were deleted", n), err
		},
	},
}

func runInit(ctx context.Context, s *bookshop.Store, args []string) (string, error) {
	if err := s.Reset(ctx); err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "database initialized", nil
	}

	fixture, err := bookshop.LoadFixture(args[0])
	if err != nil {
		return "", err
	}
	if err := s.Seed(ctx, fixture); err != nil {
		return "", err
	}
	return fmt.Sprintf("database initialized with %d books", len(fixture.Books)), nil
}

type appEnv struct {
	config *config.Config
	cmd    command
	name   string
	args   []string
	out    io.Writer
}

// Run executes the command line in args and returns the process exit code.
func Run(args []string, out io.Writer) int {
	var app appEnv
	if err := app.fromArgs(args, out); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := app.run(); err != nil {
		slog.Error("Runtime error", "command", app.name, "error", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func (app *appEnv) fromArgs(args []string, out io.Writer) error {
	fl := flag.NewFlagSet("bookshop", flag.ContinueOnError)
	fl.Usage = func() { printUsage(fl) }

	configPath := fl.String("config", os.Getenv("BOOKSHOP_CONFIG"), "Path to a YAML config file")
	dbPath := fl.String("db", "", "Database path, overrides the config")
	undated := fl.String("undated", "", "Undated book policy: skip or reject")

	if err := fl.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *undated != "" {
		cfg.UndatedPolicy = *undated
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if fl.NArg() < 1 {
		fl.Usage()
		return fmt.Errorf("please provide a command to run")
	}

	name := fl.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fl.Usage()
		return fmt.Errorf("unknown command %s", name)
	}

	rest := fl.Args()[1:]
	if cmd.nargs >= 0 && len(rest) != cmd.nargs && !(cmd.optional && len(rest) == 0) {
		return fmt.Errorf("usage: bookshop %s", cmd.usage)
	}

	app.config = cfg
	app.cmd = cmd
	app.name = name
	app.args = rest
	app.out = out

	return nil
}

func (app *appEnv) run() error {
	level, err := config.ParseLevel(app.config.LogLevel)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	policy, err := bookshop.ParseUndatedPolicy(app.config.UndatedPolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bookshop.Open(ctx, app.config.Database,
		bookshop.WithLogger(log),
		bookshop.WithUndatedPolicy(policy),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	result, err := app.cmd.run(ctx, store, app.args)
	if err != nil {
		return err
	}

	if result != "" {
		fmt.Fprintln(app.out, result)
	}
	return nil
}

func printUsage(fl *flag.FlagSet) {
	w := fl.Output()
	fmt.Fprintln(w, "Usage: bookshop [flags] <command> [args]")
	fmt.Fprintln(w, "\nCommands:")

	names := lo.Keys(commands)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}

	fmt.Fprintln(w, "\nFlags:")
	fl.PrintDefaults()
}
