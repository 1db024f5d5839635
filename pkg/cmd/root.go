package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"fsbridge/pkg/bridge"
	"fsbridge/pkg/config"
	"fsbridge/pkg/errors"
	"fsbridge/pkg/logging"
)

var (
	Version   string
	BuildDate string
	GoVersion string
	Stream    string
)

// session carries what PersistentPreRunE builds for the subcommands
type session struct {
	cfg     *config.Config
	bridge  *bridge.Bridge
	logSink io.Closer
}

func (s *session) close() error {
	if s.logSink == nil {
		return nil
	}
	err := s.logSink.Close()
	s.logSink = nil
	return err
}

// closing wraps run so the log sink is released whether or not it fails.
// cobra skips the post-run hooks after a RunE error.
func (s *session) closing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if cerr := s.close(); err == nil {
			err = cerr
		}
		return err
	}
}

// isTerminal reports whether w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// setupFileLogger configures the rotated file logger, optionally mirrored
// to console.
func setupFileLogger(cfg *config.Config, lvl zerolog.Level, console io.Writer) (io.Closer, error) {
	dir := filepath.Dir(cfg.LogFile)
	if dir != "." {
		if err := bridge.New(bridge.WithDirMode(0755)).EnsureDirectory(dir); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeMkdir, "failed to create log directory")
		}
	}
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var w io.Writer = fileWriter
	if console != nil {
		w = zerolog.MultiLevelWriter(fileWriter, zerolog.ConsoleWriter{
			Out:        console,
			NoColor:    !isTerminal(console),
			TimeFormat: time.RFC3339,
		})
	}

	log.Logger = zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("Version", Version).
		Str("Stream", Stream).
		Logger()
	return fileWriter, nil
}

// parseLogLevel converts string to zerolog level
func parseLogLevel(s string) zerolog.Level {
	if s == "" {
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			s = env
		} else {
			return zerolog.InfoLevel
		}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "0":
		return zerolog.TraceLevel
	case "debug", "1":
		return zerolog.DebugLevel
	case "info", "2":
		return zerolog.InfoLevel
	case "warn", "warning", "3":
		return zerolog.WarnLevel
	case "error", "4":
		return zerolog.ErrorLevel
	case "fatal", "5":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	s := &session{}

	cmd := &cobra.Command{
		Use:   "fsbridge",
		Short: "Single-call file primitives",
		Long: `Write, read, check, create and append files with one system call sequence per operation.
Each operation prints its result and logs one entry to the rotated log file.

Examples:

  # Create a nested directory and write a file in it
  fsbridge mkdirs /tmp/t
  fsbridge write /tmp/t/x.txt hello

  # Append and read back
  fsbridge append /tmp/t/x.txt " world"
  fsbridge read /tmp/t/x.txt

  # Run a list of operations and keep a report
  fsbridge batch plan.yaml --report report.csv

  # Show all available environment variables
  fsbridge --env-info
`,
		Version: fmt.Sprintf(`
Version: %s
Stream: %s
Build Date: %s
Go Version: %s`, Version, Stream, BuildDate, GoVersion),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if envInfo, _ := cmd.Flags().GetBool("env-info"); envInfo {
				printEnvInfo(cmd.OutOrStdout())
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	setupFlags(cmd)
	bindFlags(cmd)

	cmd.AddCommand(
		newWriteCmd(s),
		newAppendCmd(s),
		newReadCmd(s),
		newExistsCmd(s),
		newMkdirsCmd(s),
		newBatchCmd(s),
	)
	for _, c := range append(cmd.Commands(), cmd) {
		if c.RunE != nil {
			c.RunE = s.closing(c.RunE)
		}
	}

	return cmd
}

// open loads configuration, sets up logging and builds the bridge
func (s *session) open(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "configuration validation failed")
	}

	var console io.Writer
	if cfg.LogConsole {
		console = cmd.ErrOrStderr()
	}
	lvl := parseLogLevel(cfg.LogLevel)
	sink, err := setupFileLogger(cfg, lvl, console)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to setup logger")
	}

	s.cfg = cfg
	s.logSink = sink
	s.bridge = bridge.New(
		bridge.WithLogger(logging.New(log.Logger, cfg.LogTag)),
		bridge.WithFileMode(cfg.FileMode),
		bridge.WithDirMode(cfg.DirMode),
		bridge.WithChunkSize(cfg.ChunkSize),
	)

	log.Debug().
		Str("command", cmd.Name()).
		Str("fileMode", fmt.Sprintf("%04o", uint32(cfg.FileMode))).
		Str("dirMode", fmt.Sprintf("%04o", uint32(cfg.DirMode))).
		Int("chunkSize", cfg.ChunkSize).
		Str("logFile", cfg.LogFile).
		Str("logLevel", lvl.String()).
		Str("logTag", cfg.LogTag).
		Msg("starting fsbridge")
	return nil
}

// setupFlags defines all command line flags
func setupFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("env-info", false, "Display possible environment variables and their current values")
	cmd.PersistentFlags().String("config", "", "Config file path (yaml/json)")
	cmd.PersistentFlags().String("file-mode", "0666", "Permission bits for created files (octal, before umask)")
	cmd.PersistentFlags().String("dir-mode", "0777", "Permission bits for created directories (octal, before umask)")
	cmd.PersistentFlags().Int("chunk-size", 4096, "Read buffer size in bytes")
	cmd.PersistentFlags().String("log-file", "logs/fsbridge.log", "Path to log file (rotated)")
	cmd.PersistentFlags().String("log-level", "", "Log level (trace/debug/info/warn/error or 0..5)")
	cmd.PersistentFlags().Bool("log-console", false, "Mirror log entries to stderr")
	cmd.PersistentFlags().String("log-tag", "FileUtilsNative", "Component tag on bridge log entries")
}

// bindFlags binds command line flags to viper
func bindFlags(cmd *cobra.Command) {
	for _, name := range []string{
		"config",
		"file-mode",
		"dir-mode",
		"chunk-size",
		"log-file",
		"log-level",
		"log-console",
		"log-tag",
	} {
		_ = viper.BindPFlag(name, cmd.PersistentFlags().Lookup(name))
	}
}

// printEnvInfo prints environment variable information
func printEnvInfo(out io.Writer) {
	fmt.Fprintln(out, "Possible Environment Variables (prefix: FSBRIDGE_) and Current Values:")
	envKeys := []string{
		"FILE_MODE",
		"DIR_MODE",
		"CHUNK_SIZE",
		"LOG_FILE",
		"LOG_LEVEL",
		"LOG_CONSOLE",
		"LOG_TAG",
	}
	for _, key := range envKeys {
		envVar := "FSBRIDGE_" + key
		val := os.Getenv(envVar)
		if val != "" {
			fmt.Fprintf(out, "%s = %s\n", envVar, val)
		} else {
			fmt.Fprintf(out, "%s = (not set)\n", envVar)
		}
	}
}
