// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filipkocis/drumnbase/internal/cluster"
	"github.com/filipkocis/drumnbase/internal/config"
	"github.com/filipkocis/drumnbase/internal/log"
)

type initFlags struct {
	configPath string
	rootDir    string
	superuser  string
	password   string
}

type serveFlags struct {
	configPath string
	listenAddr string
}

type queryFlags struct {
	configPath string
	user       string
	password   string
	database   string
	file       string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "drumnbase",
		Short: "Single-node relational database engine",
	}

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(queryCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Cluster, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Cluster{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func initCmd() *cobra.Command {
	flags := &initFlags{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new cluster",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to cluster config file")
	cmd.Flags().StringVar(&flags.rootDir, "root-dir", "", "Override the cluster's root data directory")
	cmd.Flags().StringVar(&flags.superuser, "superuser", "admin", "Name of the seeded superuser account")
	cmd.Flags().StringVar(&flags.password, "password", "", "Password for the seeded superuser account (required)")
	return cmd
}

func runInit(flags *initFlags) error {
	if flags.password == "" {
		return fmt.Errorf("--password is required")
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if flags.rootDir != "" {
		cfg.RootDir = flags.rootDir
	}

	logSink := log.NewConsole()
	c, err := cluster.Create(cfg, flags.superuser, flags.password, logSink)
	if err != nil {
		return fmt.Errorf("failed to initialize cluster: %w", err)
	}
	defer func() {
		_ = c.Close()
	}()

	fmt.Printf("cluster initialized at %s\n", cfg.RootDir)
	return nil
}

func serveCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cluster's query listener",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to cluster config file")
	cmd.Flags().StringVar(&flags.listenAddr, "listen", "", "Override the configured listen address")
	return cmd
}

func runServe(flags *serveFlags) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if flags.listenAddr != "" {
		cfg.ListenAddr = flags.listenAddr
	}

	logSink := log.NewConsole()
	c, err := cluster.Load(cfg, logSink)
	if err != nil {
		return fmt.Errorf("failed to load cluster: %w", err)
	}
	defer func() {
		_ = c.Close()
	}()

	server := newServer(c, logSink)
	return server.ListenAndServe(cfg.ListenAddr)
}

func queryCmd() *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query [statement]",
		Short: "Run one statement against an existing cluster and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var stmt string
			if len(args) == 1 {
				stmt = args[0]
			}
			return runQuery(flags, stmt)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to cluster config file")
	cmd.Flags().StringVarP(&flags.user, "user", "u", "", "Username to authenticate as (required)")
	cmd.Flags().StringVarP(&flags.password, "password", "p", "", "Password for the user (required)")
	cmd.Flags().StringVarP(&flags.database, "database", "d", "", "Database to run the statement against (required)")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read the statement from a file instead of the argument")
	return cmd
}

func runQuery(flags *queryFlags, stmt string) error {
	if flags.user == "" || flags.database == "" {
		return fmt.Errorf("--user and --database are required")
	}
	if flags.file != "" {
		data, err := os.ReadFile(flags.file)
		if err != nil {
			return fmt.Errorf("failed to read statement file: %w", err)
		}
		stmt = string(data)
	}
	if stmt == "" {
		return fmt.Errorf("a statement is required, either as an argument or via --file")
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}

	logSink := log.NewConsole()
	c, err := cluster.Load(cfg, logSink)
	if err != nil {
		return fmt.Errorf("failed to load cluster: %w", err)
	}
	defer func() {
		_ = c.Close()
	}()

	result, err := runStatement(c, flags.user, flags.password, flags.database, stmt)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}
