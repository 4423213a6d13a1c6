package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/brettbedarf/mailfs/backends"
	"github.com/brettbedarf/mailfs/config"
	"github.com/brettbedarf/mailfs/internal/util"
)

const usage = `usage: mailfs [flags] <command> [args]

commands:
  ls <path>              list a directory
  stat <path>            show what is at path
  mkdir [-p] <path>      create a directory
  put <path>             write stdin to a file
  cat <path>             write a file to stdout
  mv <from> <to>         rename
  rm <path>              remove a file or empty directory
  deliver <maildir>      deliver stdin as a message into a maildir
  services [name]        show service properties and their resolved values

flags:
`

type options struct {
	verbose    int
	configPath string
	backend    string
	root       string
	createRoot bool
}

func defineFlags(fs *flag.FlagSet, o *options) {
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(&o.configPath, "c", "", "--config (shorthand)")
	fs.StringVar(&o.backend, "backend", "", "Backend kind: posix, windows or memory (overrides config)")
	fs.StringVar(&o.root, "root", "", "Host directory the backend is rooted at (overrides config)")
	fs.BoolVar(&o.createRoot, "create-root", false, "Create the root directory if it is missing")
	fs.IntVar(&o.verbose, "verbose", config.WarnVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 2 (warn).")
	fs.IntVar(&o.verbose, "v", config.WarnVerbose, "--verbose (shorthand)")
}

// flagOverride holds only the flags that were set on the command line, so
// defaults never mask values from the config file.
func flagOverride(fs *flag.FlagSet, o *options) *config.ConfigOverride {
	override := &config.ConfigOverride{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose", "v":
			override.LogLvl = util.Pointer(o.verbose)
		case "backend":
			override.Backend = util.Pointer(o.backend)
		case "root":
			override.Root = util.Pointer(o.root)
		case "create-root":
			override.CreateRoot = util.Pointer(o.createRoot)
		}
	})
	return override
}

func main() {
	var opts options
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	defineFlags(flag.CommandLine, &opts)
	flag.Parse()

	util.InitializeLogger(config.VerbosityToLogLevel(opts.verbose))
	logger := util.GetLogger("main")

	cfg := config.NewDefaultConfig()
	if opts.configPath != "" {
		override, err := config.LoadConfigOverrideFile(opts.configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", opts.configPath).Msg("Failed to load config file")
		}
		cfg.Merge(override)
		logger.Debug().Str("config", opts.configPath).Msg("Config file loaded")
	}
	// flags that were set win over the file
	cfg.Merge(flagOverride(flag.CommandLine, &opts))
	util.InitializeLogger(cfg.LogLvl)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	registry := backends.NewRegistry()
	backends.RegisterBuiltins(registry)
	factory, err := registry.NewFactory(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to open backend")
	}

	cli := &cli{cfg: cfg, factory: factory, stdin: os.Stdin, stdout: os.Stdout}
	if err := cli.run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "mailfs:", err)
		os.Exit(1)
	}
}
