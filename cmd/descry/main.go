package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/descry/internal/config"
	"github.com/frederic-klein/descry/internal/descriptor"
	"github.com/frederic-klein/descry/internal/pinfile"
)

var (
	configPath    string
	cacheRoot     string
	fallbackRoots []string
	storeMirror   string
	pattern       string
	outputPath    string
	verbose       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "descry",
		Short: "Bundle descriptor resolution for pipeline toolkits",
		Long: "Descry resolves bundle descriptor URIs against their providers: it locates\n" +
			"cached copies, downloads missing bundles into the cache, and answers version\n" +
			"and metadata queries.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&cacheRoot, "cache-root", "", "Primary bundle cache root")
	rootCmd.PersistentFlags().StringSliceVar(&fallbackRoots, "fallback-root", nil, "Read-only fallback cache root (repeatable)")
	rootCmd.PersistentFlags().StringVar(&storeMirror, "store-mirror", "", "Bundle store mirror URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	resolveCmd := &cobra.Command{
		Use:   "resolve <uri>",
		Short: "Download a bundle if needed and print its local path",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	latestCmd := &cobra.Command{
		Use:   "latest <uri>",
		Short: "Print the URI pinned to the latest matching version",
		Args:  cobra.ExactArgs(1),
		RunE:  runLatest,
	}
	latestCmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Version pattern, e.g. v1.2.x")

	versionsCmd := &cobra.Command{
		Use:   "versions <uri>",
		Short: "List the versions the provider knows for a bundle",
		Args:  cobra.ExactArgs(1),
		RunE:  runVersions,
	}

	infoCmd := &cobra.Command{
		Use:   "info <uri>",
		Short: "Show a bundle's manifest and release metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	prefetchCmd := &cobra.Command{
		Use:   "prefetch <uri>...",
		Short: "Download bundles into the cache ahead of time",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPrefetch,
	}

	pinCmd := &cobra.Command{
		Use:   "pin <pinfile>",
		Short: "Resolve a pinfile's requirements to concrete pinned URIs",
		Args:  cobra.ExactArgs(1),
		RunE:  runPin,
	}
	pinCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default stdout)")

	rootCmd.AddCommand(resolveCmd, latestCmd, versionsCmd, infoCmd, prefetchCmd, pinCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the descriptor options every
// command shares. Flags override config file and environment values.
func setup() (descriptor.Options, *config.Config, *log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "descry"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return descriptor.Options{}, nil, nil, err
	}
	if cacheRoot != "" {
		cfg.CacheRoot = cacheRoot
	}
	if len(fallbackRoots) > 0 {
		cfg.FallbackRoots = fallbackRoots
	}
	if storeMirror != "" {
		cfg.StoreMirror = storeMirror
	}

	logger.Debug("configuration loaded",
		"cache_root", cfg.CacheRoot,
		"fallback_roots", cfg.FallbackRoots,
		"store_mirror", cfg.StoreMirror)

	return descriptor.Options{
		Roots:       cfg.Roots(),
		StoreMirror: cfg.StoreMirror,
		GitBinary:   cfg.GitBinary,
		Logger:      logger,
	}, cfg, logger, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	opts, _, logger, err := setup()
	if err != nil {
		return err
	}

	d, err := descriptor.FromURIString(args[0], opts)
	if err != nil {
		return err
	}

	if !d.ExistsLocal() {
		logger.Info("downloading bundle", "name", d.SystemName(), "version", d.Version())
	}
	if err := d.EnsureLocal(cmd.Context()); err != nil {
		return err
	}

	fmt.Println(d.Path())
	return nil
}

func runLatest(cmd *cobra.Command, args []string) error {
	opts, _, _, err := setup()
	if err != nil {
		return err
	}

	d, err := descriptor.FromURIString(args[0], opts)
	if err != nil {
		return err
	}

	latest, err := d.Latest(cmd.Context(), pattern)
	if err != nil {
		return err
	}

	fmt.Println(latest.URI())
	return nil
}

func runVersions(cmd *cobra.Command, args []string) error {
	opts, _, _, err := setup()
	if err != nil {
		return err
	}

	d, err := descriptor.FromURIString(args[0], opts)
	if err != nil {
		return err
	}

	tags, err := d.Versions(cmd.Context())
	if err != nil {
		return err
	}

	for _, tag := range tags {
		fmt.Println(tag)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	opts, _, logger, err := setup()
	if err != nil {
		return err
	}

	d, err := descriptor.FromURIString(args[0], opts)
	if err != nil {
		return err
	}

	m, err := d.Manifest(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Name:         %s\n", d.SystemName())
	fmt.Printf("Version:      %s\n", d.Version())
	fmt.Printf("Type:         %s\n", d.Type())
	fmt.Printf("Path:         %s\n", d.Path())
	if m.DisplayName != "" {
		fmt.Printf("Display name: %s\n", m.DisplayName)
	}
	if m.Description != "" {
		fmt.Printf("Description:  %s\n", m.Description)
	}
	if m.RequiresCoreVersion != "" {
		fmt.Printf("Requires core: %s\n", m.RequiresCoreVersion)
	}
	if len(m.SupportedEngines) > 0 {
		fmt.Printf("Engines:      %v\n", m.SupportedEngines)
	}
	if len(m.Configuration) > 0 {
		fmt.Printf("Settings:     %d\n", len(m.Configuration))
	}

	deprecated, reason, err := d.Deprecation(cmd.Context())
	if err != nil {
		logger.Warn("deprecation lookup failed", "err", err)
	} else if deprecated {
		fmt.Printf("Deprecated:   yes (%s)\n", reason)
	}

	summary, url, err := d.Changelog(cmd.Context())
	if err != nil {
		logger.Warn("changelog lookup failed", "err", err)
	} else if summary != "" || url != "" {
		fmt.Printf("Changelog:    %s %s\n", summary, url)
	}
	return nil
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	opts, cfg, logger, err := setup()
	if err != nil {
		return err
	}

	workers := cfg.FetchWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(args) {
		workers = len(args)
	}

	uris := make(chan string)
	errs := make(chan error, len(args))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for uri := range uris {
				d, err := descriptor.FromURIString(uri, opts)
				if err != nil {
					errs <- err
					continue
				}
				if d.ExistsLocal() {
					logger.Debug("already cached", "uri", uri)
					continue
				}
				logger.Info("downloading bundle", "name", d.SystemName(), "version", d.Version())
				if err := d.EnsureLocal(cmd.Context()); err != nil {
					errs <- err
				}
			}
		}()
	}

	for _, uri := range args {
		uris <- uri
	}
	close(uris)
	wg.Wait()
	close(errs)

	failed := 0
	for err := range errs {
		logger.Error("prefetch failed", "err", err)
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bundles failed to prefetch", failed, len(args))
	}

	fmt.Printf("Prefetched %d bundles\n", len(args))
	return nil
}

func runPin(cmd *cobra.Command, args []string) error {
	opts, _, logger, err := setup()
	if err != nil {
		return err
	}

	reqs, err := pinfile.NewParser().Parse(args[0])
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no requirements found in %s", args[0])
	}

	var pinned []string
	for _, req := range reqs {
		d, err := descriptor.FromURIString(req.URI, opts)
		if err != nil {
			return err
		}

		logger.Debug("resolving requirement", "uri", req.URI, "pattern", req.Pattern)
		latest, err := d.Latest(cmd.Context(), req.Pattern)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", req.URI, err)
		}
		pinned = append(pinned, latest.URI())
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := pinfile.NewEmitter(out).Emit(pinned); err != nil {
		return fmt.Errorf("writing pinned set: %w", err)
	}

	if outputPath != "" {
		fmt.Printf("Pinned %d bundles to %s\n", len(pinned), outputPath)
	}
	return nil
}
