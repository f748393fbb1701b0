package config

import "github.com/urfave/cli/v2"

// Flag names shared by every plytool command.
const (
	FlagConfig     = "config"
	FlagDebug      = "debug"
	FlagLogLevel   = "log-level"
	FlagLogFile    = "log-file"
	FlagFormat     = "format"
	FlagNoDedup    = "no-dedup"
	FlagPointCloud = "point-cloud"
)

// FlagSource is the subset of *cli.Context used to read overrides.
type FlagSource interface {
	IsSet(name string) bool
	String(name string) string
	Bool(name string) bool
}

// Flags returns the global flags that override configuration values.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagConfig, Aliases: []string{"c"}, Usage: "path to config file", EnvVars: []string{"PLYTOOL_CONFIG"}},
		&cli.BoolFlag{Name: FlagDebug, Usage: "enable debug logging"},
		&cli.StringFlag{Name: FlagLogLevel, Usage: "log level (debug, info, warn, error)"},
		&cli.StringFlag{Name: FlagLogFile, Usage: "write logs to a rotated file"},
		&cli.StringFlag{Name: FlagFormat, Aliases: []string{"f"}, Usage: "report format (text, yaml)"},
		&cli.BoolFlag{Name: FlagNoDedup, Usage: "skip mesh deduplication"},
		&cli.BoolFlag{Name: FlagPointCloud, Usage: "ignore faces and decode a point cloud"},
	}
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, fs FlagSource) {
	if fs.IsSet(FlagLogLevel) {
		cfg.Logging.Level = fs.String(FlagLogLevel)
	}
	// --debug wins over --log-level.
	if fs.Bool(FlagDebug) {
		cfg.Logging.Level = "debug"
	}
	if fs.IsSet(FlagLogFile) {
		cfg.Logging.LogFile = fs.String(FlagLogFile)
	}
	if fs.IsSet(FlagFormat) {
		cfg.Output.Format = fs.String(FlagFormat)
	}
	if fs.Bool(FlagNoDedup) {
		cfg.Decode.DeduplicateValues = false
		cfg.Decode.DeduplicatePointIDs = false
	}
	if fs.Bool(FlagPointCloud) {
		cfg.Decode.PointCloud = true
	}
}
