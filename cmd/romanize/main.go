// romanize converts text given as arguments, or stdin lines, to Latin script.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/jusunglee/romanization/internal/logger"
	"github.com/jusunglee/romanization/internal/numerals"
	"github.com/jusunglee/romanization/internal/systems"
	"github.com/jusunglee/romanization/internal/tables/store"
)

const (
	modeFirst    = "first"
	modeReadings = "readings"
	modeNumerals = "numerals"
)

type config struct {
	system   string
	mode     string
	readings string
	exact    bool
}

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("romanize")

	var (
		system    = fs_.StringLong("system", "", "System to use; detected from the text when empty")
		mode      = fs_.StringEnumLong("mode", "Output: first reading, all readings, or numerals", modeFirst, modeReadings, modeNumerals)
		readings  = fs_.StringLong("readings", "", "Comma-separated reading types to consult")
		exact     = fs_.BoolLong("exact", "Print numerals as exact fractions with their unit")
		tablesURL = fs_.StringLong("tables-url", store.EmbeddedURL, "Character tables: embedded, a SQLite path, or a PostgreSQL URL")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.NewWithWriter(os.Stderr, os.Getenv("LOG_FORMAT"), logger.ParseLevel(os.Getenv("LOG_LEVEL")))
	ctx := context.Background()

	provider, st, err := store.OpenProvider(ctx, *tablesURL)
	if err != nil {
		return fmt.Errorf("opening tables: %w", err)
	}
	if st != nil {
		defer st.Close()
	}

	cfg := config{system: *system, mode: *mode, readings: *readings, exact: *exact}
	registry := systems.NewRegistry(provider, log)

	var in io.Reader = os.Stdin
	if args := fs_.GetArgs(); len(args) > 0 {
		in = strings.NewReader(strings.Join(args, " "))
	}
	return run(ctx, registry, cfg, in, os.Stdout)
}

// run processes in line by line, writing one output line per input line.
func run(ctx context.Context, registry *systems.Registry, cfg config, in io.Reader, out io.Writer) error {
	var names []string
	if cfg.readings != "" {
		names = strings.Split(cfg.readings, ",")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		result, err := process(ctx, registry, cfg, names, line)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, result); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func process(ctx context.Context, registry *systems.Registry, cfg config, names []string, line string) (string, error) {
	kind, err := pickKind(cfg, line)
	if err != nil {
		return "", err
	}
	if kind == "" {
		return line, nil
	}

	types, err := systems.ParseReadingTypes(kind, names)
	if err != nil {
		return "", err
	}
	s, err := registry.Get(ctx, systems.Config{Kind: kind, Readings: types})
	if err != nil {
		return "", err
	}

	switch cfg.mode {
	case modeReadings:
		rs, isReadings := s.(systems.ReadingsSystem)
		if !isReadings {
			return "", fmt.Errorf("system %s has no readings", kind)
		}
		return rs.ProcessWithReadings(line).Flatten(), nil
	case modeNumerals:
		ns, isNumerals := s.(systems.NumeralSystem)
		if !isNumerals {
			return "", fmt.Errorf("system %s has no numerals", kind)
		}
		format := systems.DecimalFormat
		if cfg.exact {
			format = numerals.Value.String
		}
		return ns.ProcessNumeralsInText(line, format), nil
	default:
		return s.Process(line), nil
	}
}

// pickKind resolves the system for one line. An empty kind means the line
// is printed unchanged.
func pickKind(cfg config, line string) (systems.Kind, error) {
	if cfg.system != "" {
		return systems.ParseKind(cfg.system)
	}
	if cfg.mode == modeNumerals {
		return systems.KindAtticNumerals, nil
	}
	kind, found := systems.DetectScript(line)
	if !found {
		return "", nil
	}
	return kind, nil
}
