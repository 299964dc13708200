package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/davinci-das/codec"
	"github.com/vocdoni/davinci-das/log"
)

const (
	defaultLogLevel  = "info"
	defaultLogOutput = "stderr"
	defaultEncoding  = "cbor"
	defaultWorkers   = 0 // one per CPU
	defaultDrop      = 50
)

// Version is the build version, set at build time with -ldflags
var Version = "dev"

// Config holds the application configuration
type Config struct {
	Log      LogConfig
	Setup    SetupConfig
	Workers  int    `mapstructure:"workers"`
	Encoding string `mapstructure:"encoding"`
	Out      string `mapstructure:"out"`
	Drop     int    `mapstructure:"drop"`
}

// SetupConfig selects the trusted setup
type SetupConfig struct {
	Path     string `mapstructure:"path"`
	Insecure bool   `mapstructure:"insecure"`
	Secret   string `mapstructure:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig loads configuration from flags, environment variables, and
// defaults. It returns the positional arguments left after the flags.
func loadConfig() (*Config, []string, error) {
	v := viper.New()

	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("workers", defaultWorkers)
	v.SetDefault("encoding", defaultEncoding)
	v.SetDefault("drop", defaultDrop)

	flag.StringP("setup.path", "s", "", "trusted setup JSON file in the Ethereum ceremony format")
	flag.Bool("setup.insecure", false, "derive the setup from a known secret (never use in production)")
	flag.String("setup.secret", "", "secret of the insecure setup, decimal (default 1337)")
	flag.IntP("workers", "w", defaultWorkers, "number of async workers (0 means one per CPU)")
	flag.StringP("encoding", "e", defaultEncoding, "artifact encoding when the file extension does not tell (cbor, json)")
	flag.String("out", "", "output file of setup, cells and recover")
	flag.Int("drop", defaultDrop, "percentage of cells dropped before recover")
	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "davinci-das %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: davinci-das [flags] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  setup              write an insecure trusted setup (requires --setup.insecure)\n")
		fmt.Fprintf(os.Stderr, "  commit <blob>      print the commitment and versioned hash of a blob\n")
		fmt.Fprintf(os.Stderr, "  cells <blob>       write the cells and proofs of a blob\n")
		fmt.Fprintf(os.Stderr, "  verify <artifact>  batch verify the cells of an artifact\n")
		fmt.Fprintf(os.Stderr, "  recover <artifact> drop cells of an artifact and recover them\n\n")
		fmt.Fprintf(os.Stderr, "A blob is a raw %d byte file or its 0x-hex encoding.\n\n", blobSize)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  except for dots (.) which are replaced by underscores (_).\n")
		fmt.Fprintf(os.Stderr, "  For example, DAS_SETUP_PATH or DAS_LOG_LEVEL\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  davinci-das --setup.insecure --out setup.json setup\n")
		fmt.Fprintf(os.Stderr, "  davinci-das -s setup.json --out cells.json cells blob.bin\n")
		fmt.Fprintf(os.Stderr, "  davinci-das -s setup.json --drop 40 --out full.cbor recover cells.json\n")
	}

	flag.CommandLine.SortFlags = false
	flag.Parse()

	v.SetEnvPrefix("DAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, flag.Args(), nil
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	if _, err := codec.ParseEncoding(cfg.Encoding); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("invalid number of workers %d", cfg.Workers)
	}
	if cfg.Drop < 0 || cfg.Drop > 50 {
		return fmt.Errorf("drop must be between 0 and 50, got %d", cfg.Drop)
	}
	if cfg.Setup.Path != "" && cfg.Setup.Insecure {
		return fmt.Errorf("--setup.path and --setup.insecure are mutually exclusive")
	}
	return nil
}
