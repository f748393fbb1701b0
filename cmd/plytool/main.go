// plytool inspects PLY files and decodes them into point clouds and meshes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/plygeom/internal/config"
	"github.com/Faultbox/plygeom/internal/logger"
	"github.com/Faultbox/plygeom/pkg/decoder"
	"github.com/urfave/cli/v2"
)

// Exit codes by error class.
const (
	exitFailure    = 1
	exitIO         = 2
	exitMalformed  = 3
	exitValidation = 4
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// tool carries state shared by the commands of one run.
type tool struct {
	cfg *config.Config
	out io.Writer
}

func newApp(out, errOut io.Writer) *cli.App {
	t := &tool{out: out}

	return &cli.App{
		Name:      "plytool",
		Usage:     "inspect and decode PLY point clouds and meshes",
		Writer:    out,
		ErrWriter: errOut,
		Flags:     config.Flags(),
		Before:    t.before,
		// main owns exit codes.
		ExitErrHandler: func(*cli.Context, error) {},
		After: func(*cli.Context) error {
			logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "show the header of PLY files",
				ArgsUsage: "<file.ply>...",
				Action:    t.cmdInfo,
			},
			{
				Name:      "decode",
				Aliases:   []string{"d"},
				Usage:     "decode PLY files and summarize the resulting geometry",
				ArgsUsage: "<file.ply>...",
				Action:    t.cmdDecode,
			},
			{
				Name:  "config",
				Usage: "manage the plytool configuration",
				Subcommands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "write the effective configuration to a file",
						ArgsUsage: "[path]",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
						},
						Action: t.cmdConfigInit,
					},
				},
			},
		},
	}
}

// before loads the configuration and starts logging.
func (t *tool) before(c *cli.Context) error {
	cfg, err := config.Load(c)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	t.cfg = cfg
	return nil
}

// newDecoder builds a decoder from the loaded configuration.
func (t *tool) newDecoder() *decoder.PLYDecoder {
	return decoder.NewPLYDecoder(
		decoder.WithLogger(logger.Named("decoder")),
		decoder.WithDeduplication(t.cfg.Decode.DeduplicateValues, t.cfg.Decode.DeduplicatePointIDs),
	)
}

// exitCode maps decoder error classes to process exit codes.
func exitCode(err error) int {
	var exitErr cli.ExitCoder
	switch {
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	case errors.Is(err, decoder.ErrIO):
		return exitIO
	case errors.Is(err, decoder.ErrMalformed):
		return exitMalformed
	case errors.Is(err, decoder.ErrValidation):
		return exitValidation
	default:
		return exitFailure
	}
}
