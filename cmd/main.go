package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowshot-io/zipfolders/pkg/config"
	"github.com/flowshot-io/zipfolders/pkg/logger"
	"github.com/flowshot-io/zipfolders/pkg/prompt"
	"github.com/flowshot-io/zipfolders/pkg/storager"
	"github.com/flowshot-io/zipfolders/pkg/zipall"
)

func main() {
	err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flags struct {
	configFile string
	remove     bool
	quiet      bool
	precision  int
	upload     string
	noPause    bool
	logLevel   string
	logPretty  bool
}

func newRootCommand(in io.Reader, out io.Writer, errOut io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "zipfolders [location]",
		Short: "Zip every folder inside a directory into its own archive",
		Long: "Zips each immediate subdirectory of location (default: the current directory)\n" +
			"into <name>.zip next to it, without compression, optionally removing the originals.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, f, args)
			if err != nil {
				return err
			}

			return run(cmd.Context(), settings, in, out, errOut)
		},
	}

	cmd.Flags().StringVar(&f.configFile, "config", "", "YAML settings file")
	cmd.Flags().BoolVar(&f.remove, "remove", false, "remove original folders without asking")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not report progress")
	cmd.Flags().IntVar(&f.precision, "precision", 2, "decimals in reported archive sizes")
	cmd.Flags().StringVar(&f.upload, "upload", "", "storage connection string to copy archives to")
	cmd.Flags().BoolVar(&f.noPause, "no-pause", false, "exit without waiting for ENTER")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	cmd.Flags().BoolVar(&f.logPretty, "log-pretty", true, "human-friendly log output")

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cmd
}

// loadSettings merges defaults, the settings file and explicitly set flags.
func loadSettings(cmd *cobra.Command, f flags, args []string) (config.Settings, error) {
	settings := config.Default()

	if f.configFile != "" {
		if err := config.Load(f.configFile, &settings); err != nil {
			return settings, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("remove") {
		remove := f.remove
		settings.RemoveFolders = &remove
	}
	if changed("quiet") {
		settings.Quiet = f.quiet
	}
	if changed("precision") {
		settings.SizePrecision = f.precision
	}
	if changed("upload") {
		settings.Upload = f.upload
	}
	if changed("no-pause") {
		settings.NoPause = f.noPause
	}
	if changed("log-level") {
		settings.Log.Level = f.logLevel
	}
	if changed("log-pretty") {
		settings.Log.Pretty = f.logPretty
	}
	if len(args) > 0 {
		settings.Location = args[0]
	}

	return settings, config.Validate(settings)
}

func run(ctx context.Context, settings config.Settings, in io.Reader, out io.Writer, errOut io.Writer) error {
	log, err := logger.New(&logger.Options{
		Pretty: settings.Log.Pretty,
		Level:  settings.Log.Level,
		Writer: errOut,
	})
	if err != nil {
		return err
	}

	p := prompt.New(in, out)

	remove := false
	if settings.RemoveFolders != nil {
		remove = *settings.RemoveFolders
	} else {
		remove, err = p.Choice("Remove original folders?")
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	opts := &zipall.Options{
		Location:      settings.Location,
		RemoveFolders: remove,
		Logger:        log,
	}

	if settings.Upload != "" {
		store, err := storager.New(settings.Upload)
		if err != nil {
			return fmt.Errorf("error opening upload storage: %w", err)
		}
		opts.Publisher = storager.NewPublisher(store)
	}

	zipper, err := zipall.New(opts)
	if err != nil {
		return err
	}
	zipper.SetSizePrecision(settings.SizePrecision)

	if settings.Quiet {
		err = zipper.Zip(ctx)
	} else {
		err = zipper.ZipVerbose(ctx, out)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Done.")

	if !settings.NoPause {
		return p.Pause("Press ENTER to continue . . . ")
	}

	return nil
}
