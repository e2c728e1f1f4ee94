package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"subscout/domain"
	"subscout/model"
)

var version = "0.1.0"

func newRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "subscout",
		Short:         "Enumerate subdomains via search engine scraping and common name probing",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScan(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	registerFlags(flags)
	_ = cmd.MarkFlagRequired("domain")

	bindFlags(v, flags)
	return cmd
}

func runScan(ctx context.Context, cfg *Config, stdout, stderr io.Writer) error {
	log, err := domain.CreateLogger(&domain.LogOption{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
	})
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	domain.Log = log

	printer := domain.NewPrinter(stdout, stderr, cfg.NoColor)
	mo := &domain.DomainModuleOption{
		RootDomain: cfg.Domain,
		Proxy:      cfg.Proxy,
		Insecure:   cfg.Insecure,
		Log:        log,
	}

	modules, err := createModules(mo, cfg, printer, log)
	if err != nil {
		return err
	}

	var store domain.ResultStore
	if cfg.DB != "" {
		s, err := model.Connect(cfg.DB)
		if err != nil {
			log.Warnf("打开数据库失败, 结果不做持久化: %v", err)
		} else {
			defer s.Close()
			store = s
		}
	}

	scout := domain.CreateScout(&domain.ScoutOption{
		DomainModuleOption: mo,
		Output:             cfg.Output,
		Store:              store,
		Printer:            printer,
	}, modules...)
	_, err = scout.Start(ctx)
	return err
}

func createModules(mo *domain.DomainModuleOption, cfg *Config, printer *domain.Printer, log *logrus.Logger) ([]domain.DomainModuler, error) {
	searcher, err := domain.CreateDomainSearcher(mo, &domain.DomainSearcherOption{
		SearchAPI: cfg.Search.API,
		Num:       cfg.Num,
		Pause:     cfg.Search.Pause,
	})
	if err != nil {
		return nil, err
	}

	guesser, err := domain.CreateDomainGuesser(mo, &domain.DomainGuesserOption{
		Concurrency: cfg.Concurrency,
		Progress:    printer.Progress(len(domain.CommonSubdomains), "probing"),
	})
	if err != nil {
		return nil, err
	}

	modules := []domain.DomainModuler{searcher, guesser}
	for _, p := range cfg.Providers {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "certspotter":
			provider, err := domain.CreateDomainProvider(mo, nil)
			if err != nil {
				return nil, err
			}
			modules = append(modules, provider)
		case "":
		default:
			log.Warnf("不支持的数据源%v, 已忽略", p)
		}
	}
	return modules, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
