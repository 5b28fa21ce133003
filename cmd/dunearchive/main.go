// Command dunearchive runs the archive's command interpreter, either
// over an input file of commands (search results are written to the
// output file) or as an interactive prompt.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/volkanBora123/DuneArchive/catalog"
	"github.com/volkanBora123/DuneArchive/interp"
	"github.com/volkanBora123/DuneArchive/oplog"
	"github.com/volkanBora123/DuneArchive/store"
)

type config struct {
	DataDir     string `mapstructure:"data_dir"`
	MaxPages    int    `mapstructure:"max_pages"`
	CatalogPath string `mapstructure:"catalog_path"`
	OplogPath   string `mapstructure:"oplog_path"`
	OutputPath  string `mapstructure:"output_path"`
	Debug       bool   `mapstructure:"debug"`
}

func loadConfig() (*config, error) {
	viper.SetConfigName("dunearchive")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetDefault("data_dir", ".")
	viper.SetDefault("max_pages", store.DefaultMaxPages)
	viper.SetDefault("catalog_path", catalog.DefaultPath)
	viper.SetDefault("oplog_path", oplog.DefaultPath)
	viper.SetDefault("output_path", "output.txt")
	viper.SetDefault("debug", false)

	// A missing config file just means defaults.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var cfg config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	} else {
		cfg.Level.SetLevel(zapcore.WarnLevel)
	}
	return zap.Must(cfg.Build())
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	cat := catalog.New(cfg.CatalogPath)
	st := store.New(cat, store.Config{
		DataDir:  cfg.DataDir,
		MaxPages: cfg.MaxPages,
	}, logger)
	opl, err := oplog.Open(cfg.OplogPath)
	if err != nil {
		logger.Fatal("cannot open operation log", zap.Error(err))
	}
	defer opl.Close()
	in := interp.New(cat, st, opl, logger)

	switch len(os.Args) {
	case 1:
		runInteractive(in)
	case 2:
		if err := runBatch(in, os.Args[1], cfg.OutputPath); err != nil {
			logger.Fatal("batch run failed", zap.Error(err))
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: dunearchive [input file]")
		os.Exit(1)
	}
}

// runBatch processes every command in inputPath and writes the
// collected search results to outputPath, one per line with no
// trailing newline.  The output file is truncated even when there
// are no results.
func runBatch(in *interp.Interp, inputPath, outputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	outputs, err := in.Run(f)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(strings.Join(outputs, "\n")), 0644)
}

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func runInteractive(in *interp.Interp) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("dune> "))
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		res := in.Process(line)
		if res.Output != "" {
			fmt.Println(res.Output)
		}
		if res.Status == interp.Success {
			fmt.Println(successStyle.Render(string(res.Status)))
		} else {
			fmt.Println(failureStyle.Render(string(res.Status)))
		}
	}
}
