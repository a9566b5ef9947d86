package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexdesignworks/site-test-rest/internal/config"
	"github.com/alexdesignworks/site-test-rest/internal/loader"
	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/printer"
	"github.com/alexdesignworks/site-test-rest/internal/server"
	"github.com/alexdesignworks/site-test-rest/internal/storage"
	"github.com/alexdesignworks/site-test-rest/internal/transport"
	"github.com/alexdesignworks/site-test-rest/pkg/mockrest"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mockrest",
	Short: "File-backed request/response mock store for integration tests",
	Long: `mockrest manages the shared mock store used by integration tests: a test
runner registers (request, response) pairs, and the system under test resolves
its outgoing requests against them instead of hitting the network.
`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin HTTP API over a mock store",
	RunE:  runServe,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the registered mock responses",
	RunE:  runInspect,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a single mock response",
	RunE:  runRegister,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a request against the store and print the response",
	RunE:  runResolve,
}

var loadCmd = &cobra.Command{
	Use:   "load <fixtures.yaml>",
	Short: "Register mock responses from a YAML fixture file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all registered mock responses",
	RunE:  runReset,
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete the store's backing file",
	RunE:  runDestroy,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   showVersion,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringP("store", "s", "", "Store file path (defaults to "+mockrest.StorePathEnv+")")
	rootCmd.PersistentFlags().String("driver", "", "Storage driver (file or sqlite)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output mode (console or json)")

	serveCmd.Flags().IntP("port", "p", 0, "Admin API listen port")
	serveCmd.Flags().String("path", "", "Admin API path prefix")

	registerCmd.Flags().String("method", "", "Request method to match (supports /regex/ form)")
	registerCmd.Flags().String("url", "", "Request URL to match (supports /regex/ form)")
	registerCmd.Flags().Int("code", 200, "Response code")
	registerCmd.Flags().String("data", "", "Response data")
	registerCmd.MarkFlagRequired("method")
	registerCmd.MarkFlagRequired("url")

	resolveCmd.Flags().String("method", "", "Request method")
	resolveCmd.Flags().String("url", "", "Request URL")
	resolveCmd.MarkFlagRequired("method")
	resolveCmd.MarkFlagRequired("url")

	bindFlags(rootCmd)

	rootCmd.AddCommand(serveCmd, inspectCmd, registerCmd, resolveCmd, loadCmd, resetCmd, destroyCmd, versionCmd)
}

func bindFlags(cmd *cobra.Command) {
	viper.BindPFlag("storage.path", cmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("storage.driver", cmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.mode", cmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("admin.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("admin.path", serveCmd.Flags().Lookup("path"))
}

// setup loads configuration and builds the logger shared by all commands.
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configPath, viper.GetViper())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if store, err := cmd.Flags().GetString("store"); err == nil && store != "" {
		cfg.Storage.Path = store
	}
	if driver, err := cmd.Flags().GetString("driver"); err == nil && driver != "" {
		cfg.Storage.Driver = driver
	}
	if logLevel, err := cmd.Flags().GetString("log-level"); err == nil && logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if output, err := cmd.Flags().GetString("output"); err == nil && output != "" {
		cfg.Output.Mode = output
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, logger.NewLogger(&cfg.Log, cfg.Output.Mode), nil
}

// resolveStorePath picks the store identity: explicit flag/config first,
// then the path published in the environment.
func resolveStorePath(cfg *config.Config) (string, error) {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, nil
	}
	if path := mockrest.CurrentPath(); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("no store path given: pass --store or set %s", mockrest.StorePathEnv)
}

func openStore(cfg *config.Config, log logger.Logger) (storage.Store, error) {
	path, err := resolveStorePath(cfg)
	if err != nil {
		return nil, err
	}
	return storage.Open(&cfg.Storage, path, log)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	if port, err := cmd.Flags().GetInt("port"); err == nil && port != 0 {
		cfg.Admin.Port = port
	}
	if path, err := cmd.Flags().GetString("path"); err == nil && path != "" {
		cfg.Admin.Path = path
	}
	cfg.Admin.Enable = true
	if err := cfg.Validate(); err != nil {
		return err
	}

	// A fresh scratch store is created and published when none was given,
	// so "mockrest serve" alone is enough to start a usable instance.
	if cfg.Storage.Path == "" && mockrest.CurrentPath() == "" {
		cfg.Storage.Path = storage.ScratchPath(cfg.Storage.ScratchDir, cfg.Storage.Prefix, "")
		if err := mockrest.Publish(cfg.Storage.Path); err != nil {
			return err
		}
		log.Info("Created scratch store", "path", cfg.Storage.Path)
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	return server.New(cfg, store, log).Start(context.Background())
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	info := printer.StoreInfo{Path: store.Path()}
	if stat, err := os.Stat(store.Path()); err == nil {
		info.Size = stat.Size()
		info.ModTime = stat.ModTime()
	}

	return printer.New(cfg.Output.Mode, log, cfg.Output.NoColor).PrintStore(info, store.All())
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	method, _ := cmd.Flags().GetString("method")
	url, _ := cmd.Flags().GetString("url")
	code, _ := cmd.Flags().GetInt("code")
	data, _ := cmd.Flags().GetString("data")

	rec := record.New(
		record.Criteria{"method": method, "url": url},
		map[string]interface{}{"code": code, "data": data},
	)
	if err := store.Add(rec); err != nil {
		return err
	}

	log.Info("Mock response registered", "method", method, "url", url, "code", code)
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	method, _ := cmd.Flags().GetString("method")
	url, _ := cmd.Flags().GetString("url")

	resp := transport.New(store, log).Request(&transport.Request{Method: method, URL: url})

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := loader.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := loader.Register(store, records); err != nil {
		return err
	}

	log.Info("Fixtures loaded", "file", args[0], "count", len(records))
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(); err != nil {
		return err
	}
	log.Info("Store reset", "path", store.Path())
	return nil
}

func runDestroy(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	path := store.Path()
	if err := store.Destroy(); err != nil {
		return err
	}
	log.Info("Store destroyed", "path", path)
	return nil
}

func showVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("mockrest %s (commit %s, built %s)\n", version, commit, buildDate)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
