package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airslate-oss/setup-specmatic/internal/action"
	"github.com/airslate-oss/setup-specmatic/internal/catalog"
	"github.com/airslate-oss/setup-specmatic/internal/config"
	"github.com/airslate-oss/setup-specmatic/internal/fetch"
	"github.com/airslate-oss/setup-specmatic/internal/installer"
	"github.com/airslate-oss/setup-specmatic/internal/setup"
	"github.com/airslate-oss/setup-specmatic/internal/toolcache"
	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	cfg, err := config.NewActionConfigFromEnv()
	log := action.NewLogger(os.Stdout, cfg != nil && bool(cfg.Actions))
	if err != nil {
		log.Errorf("ERROR: %v", err)
		os.Exit(1)
	}

	cmd := &cobra.Command{
		Use:     "setup-specmatic",
		Short:   "Set up a specific version of Specmatic and add it to the PATH",
		Version: version,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := run(log, cfg, cmd, args); err != nil {
				log.Errorf("ERROR: %v", err)
				os.Exit(1)
			}
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	cmd.PersistentFlags().StringP("specmatic-version", "v", cfg.SpecmaticVersion, "the version spec to set up (exact, range, stable or oldstable)")
	cmd.PersistentFlags().StringP("specmatic-version-file", "f", cfg.SpecmaticVersionFile, "path to a file containing the version to set up")
	cmd.PersistentFlags().Bool("check-latest", bool(cfg.CheckLatest), "check for the latest available version satisfying the version spec")
	cmd.PersistentFlags().String("token", cfg.Token, "token used to authenticate against the GitHub API")
	cmd.PersistentFlags().StringP("architecture", "a", cfg.GetArch(), "the target architecture")
	cmd.PersistentFlags().String("tool-cache", cfg.ToolCache, "the tool cache directory")
	cmd.PersistentFlags().Int("http-retries", int(cfg.HTTPRetries), "number of retries for failed HTTP requests")
	cmd.PersistentFlags().SortFlags = false

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func run(log *logrus.Logger, cfg *config.ActionConfig, cmd *cobra.Command, _ []string) error {
	log.Debugf("starting setup-specmatic (version=%s)", version)
	versionSpec, err := config.ResolveVersionInput(
		log,
		must(cmd.PersistentFlags().GetString("specmatic-version")),
		must(cmd.PersistentFlags().GetString("specmatic-version-file")),
	)
	if err != nil {
		return err
	}
	log.Infof("Setup specmatic version spec %s", versionSpec)
	if versionSpec == "" {
		return nil
	}

	cfg.ToolCache = must(cmd.PersistentFlags().GetString("tool-cache"))
	toolCacheDir, err := cfg.GetToolCacheDir()
	if err != nil {
		return err
	}
	checkLatest := must(cmd.PersistentFlags().GetBool("check-latest"))
	token := must(cmd.PersistentFlags().GetString("token"))
	arch := must(cmd.PersistentFlags().GetString("architecture"))
	retries := must(cmd.PersistentFlags().GetInt("http-retries"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetchClient := fetch.New(
		fetch.WithLogger(log),
		fetch.WithRetries(retries, time.Second),
		fetch.WithUserAgent("setup-specmatic/"+version),
	)
	newGitHubClient := config.GitHubClientFactory(fetchClient.StandardClient())
	cache := toolcache.New(toolCacheDir, log)
	platform := release.CurrentPlatform()

	s := setup.New(
		config.Specmatic,
		catalog.NewManifestSource(config.Specmatic, newGitHubClient, fetchClient),
		catalog.NewDistSource(config.Specmatic, newGitHubClient),
		cache,
		installer.New(fetchClient, cache, cfg.GetTempDir(), platform, log),
		platform,
		log,
	)
	res, err := s.Acquire(ctx, versionSpec, checkLatest, token, arch)
	if err != nil {
		return err
	}

	commands := action.NewCommands(os.Stdout, cfg.PathFile, cfg.OutputFile)
	if err := commands.AddPath(res.InstallDir); err != nil {
		return err
	}
	log.Info("Added specmatic to the path")
	if err := commands.SetOutput("specmatic-version", res.Version); err != nil {
		return err
	}
	log.Infof("Successfully set up Specmatic version %s", res.Version)
	return nil
}
