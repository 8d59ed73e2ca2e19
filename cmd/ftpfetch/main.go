package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/richiec/ftpfetch/internal/config"
	"github.com/richiec/ftpfetch/pkg/executor"
	"github.com/richiec/ftpfetch/pkg/planner"
	"github.com/richiec/ftpfetch/pkg/scanner"
	"github.com/richiec/ftpfetch/pkg/snapshot"
	"github.com/richiec/ftpfetch/pkg/summary"
	"github.com/richiec/ftpfetch/pkg/transport"
	"github.com/richiec/ftpfetch/pkg/transport/ftpclient"
	"github.com/richiec/ftpfetch/pkg/transport/s3client"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	password  string
	whitelist string
	blacklist string
	noConfirm bool
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ftpfetch <connection-json>",
		Short: "One-way remote-to-local directory synchronization",
		Long: `ftpfetch mirrors a remote directory tree (FTP/FTPS or S3) to a local one.
It scans both sides, writes the planned changes to summary.txt, asks for
confirmation and then applies the plan. The remote side always wins.`,
		Version: fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date),
		Args:    cobra.ExactArgs(1),
		RunE:    run,
	}

	rootCmd.Flags().StringVarP(&password, "password", "p", "", "overwrite the user password in the config")
	rootCmd.Flags().StringVar(&whitelist, "whitelist", "", "overwrite the config whitelist (comma separated)")
	rootCmd.Flags().StringVar(&blacklist, "blacklist", "", "overwrite the config blacklist (comma separated)")
	rootCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip the preview confirmation step")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-entry scan and apply detail")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	setupLogging(verbose)
	ctx := cmd.Context()

	cfg, err := config.Load(args[0])
	if err != nil {
		// Usage help only makes sense for a config the operator got
		// wrong, not for a file that could not be read.
		cmd.SilenceUsage = !errors.Is(err, config.ErrInvalidConfig)
		return err
	}
	cfg.Override(password, whitelist, blacklist)

	// Config is good; from here on errors are runtime, not usage.
	cmd.SilenceUsage = true

	remote, err := openRemote(ctx, cfg)
	if err != nil {
		return err
	}
	defer remote.Close()

	filter := snapshot.NewFilterSet(cfg.Whitelist, cfg.Blacklist)

	slog.Info("scanning remote tree", "root", cfg.RemoteRoot)
	remoteSnap, err := scanner.Scan(ctx, cfg.RemoteRoot, filter, remote)
	if err != nil {
		return fmt.Errorf("scan remote: %w", err)
	}

	slog.Info("scanning local tree", "root", cfg.LocalRoot)
	localSnap, err := scanner.Scan(ctx, cfg.LocalRoot, filter, scanner.NewLocalLister())
	if err != nil {
		return fmt.Errorf("scan local: %w", err)
	}

	plan := planner.Sequence(planner.Diff(remoteSnap, localSnap))

	if err := summary.Write(summary.DefaultPath, &plan); err != nil {
		return err
	}

	if plan.Empty() {
		fmt.Println("Everything is up to date!")
		return nil
	}

	slog.Info("plan ready",
		"downloads", plan.DownloadTotal(),
		"deletions", plan.DeletionTotal(),
		"summary", summary.DefaultPath)

	if !noConfirm && !confirm(cmd.InOrStdin()) {
		fmt.Println("Sync canceled")
		return nil
	}

	report := executor.New(remote, cfg.LocalRoot).Apply(ctx, &plan)

	// Per-item failures were already reported as they happened; they do
	// not fail the run, a later pass simply retries them.
	if n := len(report.Errors); n > 0 {
		slog.Warn("sync finished with errors",
			"failed", n,
			"downloaded", report.FilesDownloaded,
			"deleted", report.FilesDeleted+report.DirsDeleted)
	} else {
		fmt.Println("Sync finished")
	}
	return nil
}

func openRemote(ctx context.Context, cfg *config.Config) (transport.Remote, error) {
	conn := cfg.RemoteConnection
	switch conn.Protocol {
	case config.ProtocolS3:
		return s3client.New(ctx, conn.Host)
	default:
		return ftpclient.Connect(ctx, ftpclient.Options{
			Host:     conn.Host,
			Port:     conn.Port,
			User:     conn.User,
			Password: conn.Password,
			TLS:      conn.TLS,
			Timeout:  time.Duration(conn.Timeout) * time.Second,
		})
	}
}

func confirm(in io.Reader) bool {
	fmt.Println("Would you like to apply the changes in summary.txt? (y)es/(n)o")

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})))
}
