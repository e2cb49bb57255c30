// file: cmd/floppyarchive/main.go

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ha1tch/floppyarchive/cmd/acquire"
	"github.com/ha1tch/floppyarchive/cmd/deleted"
	"github.com/ha1tch/floppyarchive/cmd/extract"
	"github.com/ha1tch/floppyarchive/cmd/info"
	"github.com/ha1tch/floppyarchive/cmd/list"
	recovercmd "github.com/ha1tch/floppyarchive/cmd/recover"
	"github.com/ha1tch/floppyarchive/cmd/sector"
	"github.com/ha1tch/floppyarchive/cmd/serve"
	"github.com/ha1tch/floppyarchive/internal/config"
	"github.com/ha1tch/floppyarchive/pkg/container"
	"github.com/ha1tch/floppyarchive/pkg/fat12"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var cerr *container.Error
	if errors.As(err, &cerr) {
		switch cerr.Kind {
		case container.KindEmptyImage, container.KindUnknownSignature, container.KindInvalidGeometry:
			return 2
		}
	}
	var ferr *fat12.Error
	if errors.As(err, &ferr) && (ferr.Kind == fat12.KindNotFatFilesystem || ferr.Kind == fat12.KindInvalidCluster) {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	var jsonOut bool

	root := &cobra.Command{
		Use:   "floppyarchive",
		Short: "Archive and inspect EDSK/DSK floppy disk images",
	}
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit JSON output where supported")

	root.AddCommand(newInfoCmd(&jsonOut))
	root.AddCommand(newListCmd(&jsonOut))
	root.AddCommand(newDeletedCmd(&jsonOut))
	root.AddCommand(newExtractCmd())
	root.AddCommand(newRecoverCmd())
	root.AddCommand(newSectorCmd())
	root.AddCommand(newAcquireCmd())
	root.AddCommand(newServeCmd())

	return root
}

func newInfoCmd(jsonOut *bool) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Show container header and filesystem summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := info.DefaultInfoOptions()
			opts.JSON = *jsonOut
			opts.Verbose = verbose
			return info.Info(args[0], opts)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include per-sector anomalies")
	return cmd
}

func newListCmd(jsonOut *bool) *cobra.Command {
	var sortBy, pattern string
	var reverse, long bool
	cmd := &cobra.Command{
		Use:   "list <image>",
		Short: "List the FAT12 directory tree inside an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := list.DefaultListOptions()
			opts.JSON = *jsonOut
			opts.Sort = sortBy
			opts.Reverse = reverse
			opts.Long = long
			opts.Pattern = pattern
			return list.List(args[0], opts)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "path", "sort order: name, size, path")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "reverse sort order")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show modification time")
	cmd.Flags().StringVar(&pattern, "pattern", "*", "filter by filename glob")
	return cmd
}

func newDeletedCmd(jsonOut *bool) *cobra.Command {
	var onlyRecoverable bool
	cmd := &cobra.Command{
		Use:   "deleted <image>",
		Short: "List deleted FAT12 entries and their recoverability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := deleted.DefaultDeletedOptions()
			opts.JSON = *jsonOut
			opts.OnlyRecoverable = onlyRecoverable
			return deleted.Deleted(args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&onlyRecoverable, "recoverable-only", false, "show only recoverable entries")
	return cmd
}

func newExtractCmd() *cobra.Command {
	var outputDir string
	var overwrite, all bool
	cmd := &cobra.Command{
		Use:   "extract <image> [path]",
		Short: "Extract a live file (or all files) from an image's FAT12 filesystem",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := extract.DefaultExtractOptions()
			opts.OutputDir = outputDir
			opts.Overwrite = overwrite
			if all || len(args) == 1 {
				return extract.ExtractAll(args[0], opts)
			}
			return extract.Extract(args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to extract files into")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "allow overwriting existing files")
	cmd.Flags().BoolVar(&all, "all", false, "extract every live file")
	return cmd
}

func newRecoverCmd() *cobra.Command {
	var outputDir string
	var overwrite, force bool
	cmd := &cobra.Command{
		Use:   "recover <image> <path>",
		Short: "Recover a deleted FAT12 file from contiguous free clusters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := recovercmd.DefaultRecoverOptions()
			opts.OutputDir = outputDir
			opts.Overwrite = overwrite
			opts.Force = force
			return recovercmd.Recover(args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to write the recovered file into")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "allow overwriting an existing output file")
	cmd.Flags().BoolVar(&force, "force", false, "attempt recovery even if judged not recoverable")
	return cmd
}

func newSectorCmd() *cobra.Command {
	var track, side int
	var r string
	cmd := &cobra.Command{
		Use:   "sector <image>",
		Short: "Hex dump one sector by track/side/R",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(r, 0, 8)
			if err != nil {
				return fmt.Errorf("invalid sector id: %w", err)
			}
			return sector.Dump(args[0], sector.SectorOptions{Track: track, Side: side, R: byte(v)})
		},
	}
	cmd.Flags().IntVar(&track, "track", 0, "physical track")
	cmd.Flags().IntVar(&side, "side", 0, "physical side")
	cmd.Flags().StringVar(&r, "r", "1", "sector R identifier")
	return cmd
}

func newAcquireCmd() *cobra.Command {
	opts := acquire.DefaultAcquireOptions()
	cmd := &cobra.Command{
		Use:   "acquire <output-path>",
		Short: "Read a floppy via the external gw tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return acquire.Run(args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.GwPath, "gw-path", "gw", "path to the gw binary")
	cmd.Flags().StringVar(&opts.Format, "format", "", "acquisition format passed to gw")
	cmd.Flags().IntVar(&opts.Tracks, "tracks", 0, "number of tracks to read (0 = gw default)")
	cmd.Flags().IntVar(&opts.Revs, "revs", 3, "revolutions per track")
	cmd.Flags().IntVar(&opts.Retries, "retries", 3, "retries per track")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transport boundary",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			return serve.Run(cfg, v)
		},
	}
}
