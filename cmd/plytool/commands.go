package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/Faultbox/plygeom/internal/config"
	"github.com/Faultbox/plygeom/internal/logger"
	"github.com/Faultbox/plygeom/internal/report"
	"github.com/Faultbox/plygeom/pkg/decoder"
	"github.com/Faultbox/plygeom/pkg/formats"
	"github.com/Faultbox/plygeom/pkg/geometry"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// summary is implemented by the report types.
type summary interface {
	WriteText(w io.Writer) error
}

func (t *tool) cmdInfo(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: plytool info <file.ply>...", exitFailure)
	}

	for i, path := range c.Args().Slice() {
		ply, err := formats.ParsePLYFile(path)
		if err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				return fmt.Errorf("%s: %w: %w", path, decoder.ErrIO, err)
			}
			return fmt.Errorf("%s: %w: %w", path, decoder.ErrMalformed, err)
		}
		if err := t.write(i, report.NewHeader(path, ply)); err != nil {
			return err
		}
	}
	return nil
}

func (t *tool) cmdDecode(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: plytool decode <file.ply>...", exitFailure)
	}

	dec := t.newDecoder()
	for i, path := range c.Args().Slice() {
		s, err := t.decodeFile(dec, path)
		if err != nil {
			logger.Warn("decode failed", zap.String("file", path), zap.Error(err))
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := t.write(i, s); err != nil {
			return err
		}
	}
	return nil
}

func (t *tool) decodeFile(dec *decoder.PLYDecoder, path string) (summary, error) {
	withBounds := t.cfg.Output.Bounds

	if t.cfg.Decode.PointCloud {
		pc := geometry.NewPointCloud()
		if err := dec.DecodeFromFile(path, pc); err != nil {
			return nil, err
		}
		logger.Info("decoded point cloud", zap.String("file", path), zap.Int("points", pc.NumPoints()))
		return report.NewPointCloud(path, pc, withBounds), nil
	}

	mesh := geometry.NewMesh()
	if err := dec.DecodeMeshFromFile(path, mesh); err != nil {
		return nil, err
	}
	logger.Info("decoded mesh",
		zap.String("file", path),
		zap.Int("points", mesh.NumPoints()),
		zap.Int("faces", mesh.NumFaces()))
	if mesh.NumFaces() == 0 {
		return report.NewPointCloud(path, &mesh.PointCloud, withBounds), nil
	}
	return report.NewMesh(path, mesh, withBounds), nil
}

// write renders the i-th summary of a run in the configured format.
func (t *tool) write(i int, s summary) error {
	if t.cfg.Output.Format == config.FormatYAML {
		if i > 0 {
			fmt.Fprintln(t.out, "---")
		}
		return report.WriteYAML(t.out, s)
	}
	if i > 0 {
		fmt.Fprintln(t.out)
	}
	return s.WriteText(t.out)
}

func (t *tool) cmdConfigInit(c *cli.Context) error {
	path := c.Args().First()
	target := path
	if target == "" {
		target = config.DefaultPath()
	}

	if _, err := os.Stat(target); err == nil && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", target), exitFailure)
	}

	var err error
	if path == "" {
		path, err = t.cfg.Save()
	} else {
		err = t.cfg.SaveTo(path)
	}
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(t.out, "Wrote %s\n", path)
	return nil
}
