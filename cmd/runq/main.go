package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/devstats/gha2db/internal/config"
	"github.com/devstats/gha2db/internal/logging"
	"github.com/devstats/gha2db/internal/projects"
)

var errOddParams = errors.New("parameters must be given as name/value pairs")

func main() {
	kingpinApp := kingpin.New("runq", "Renders a gha2db SQL file with {{param}} replacements using the environment-resolved context")
	sqlFile := kingpinApp.Arg("sql_file", "SQL file to render, relative to GHA2DB_DATADIR unless GHA2DB_LOCAL or GHA2DB_ABSOLUTE is set").Required().String()
	params := kingpinApp.Arg("params", "Replacement pairs: name value [name value ...]").Strings()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	r := runner{fs: afero.NewOsFs(), out: os.Stdout}
	if err := r.run(*sqlFile, *params); err != nil {
		fmt.Fprintf(os.Stderr, "runq: %v\n", err)
		os.Exit(1)
	}
}

type runner struct {
	fs     afero.Fs
	out    io.Writer
	logger *zap.Logger
	opts   []config.Option
}

func (r runner) run(sqlFile string, params []string) error {
	start := time.Now()

	pairs, err := pairParams(params)
	if err != nil {
		return err
	}

	ctx, projectsErr, err := r.context()
	if err != nil {
		return err
	}

	logger := r.logger
	if logger == nil {
		logger, err = logging.New(ctx.Debug)
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()
	}
	if projectsErr != nil {
		logger.Warn("projects file unavailable, using environment only", zap.Error(projectsErr))
	}

	if ctx.CtxOut {
		if err := ctx.Print(r.out); err != nil {
			return fmt.Errorf("print context: %w", err)
		}
	}

	path := ctx.DataPath(sqlFile)
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("read SQL file: %w", err)
	}

	sql := strings.NewReplacer(pairs...).Replace(string(data))
	if ctx.Explain {
		sql = "explain " + sql
	}
	if _, err := io.WriteString(r.out, sql); err != nil {
		return err
	}

	logger.Info("rendered query",
		zap.String("file", path),
		zap.Int("params", len(pairs)/2),
		zap.String("project", ctx.Project),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// context resolves the Ctx and, for a project run, resolves it again with
// the project's projects.yaml entry as overrides. An unreadable projects
// file is reported through projectsErr and leaves the env-only Ctx.
func (r runner) context() (ctx *config.Ctx, projectsErr, err error) {
	opts := append([]config.Option{config.WithFs(r.fs)}, r.opts...)
	ctx = config.New(opts...)
	if ctx.Project == "" {
		return ctx, nil, nil
	}

	file, projectsErr := projects.Load(r.fs, ctx.DataPath(ctx.ProjectsYaml))
	if projectsErr != nil {
		return ctx, projectsErr, nil
	}

	ov, ok, err := file.Overrides(ctx.Project)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("project %q not found in %s", ctx.Project, ctx.ProjectsYaml)
	}
	return config.New(append(opts, config.WithOverrides(ov))...), nil, nil
}

// pairParams turns "name value" arguments into "{{name}}", "value" pairs
// for a strings.Replacer.
func pairParams(params []string) ([]string, error) {
	if len(params)%2 != 0 {
		return nil, errOddParams
	}

	pairs := make([]string, 0, len(params))
	for i := 0; i < len(params); i += 2 {
		name := strings.TrimSpace(params[i])
		if name == "" {
			return nil, fmt.Errorf("parameter %d has an empty name", i/2+1)
		}
		pairs = append(pairs, "{{"+name+"}}", params[i+1])
	}
	return pairs, nil
}
