// file: cmd/acquire/acquire.go

package acquire

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ha1tch/floppyarchive/pkg/acquire"
)

// AcquireOptions configures a hardware read via the external gw tool.
type AcquireOptions struct {
	GwPath  string
	Format  string
	Tracks  int
	Revs    int
	Retries int
}

// DefaultAcquireOptions returns default options for Acquire.
func DefaultAcquireOptions() *AcquireOptions {
	return &AcquireOptions{GwPath: "gw", Revs: 3, Retries: 3}
}

// Run drives one acquisition read, printing progress lines to
// standard output and honoring Ctrl-C as a cancellation request.
func Run(outputPath string, opts *AcquireOptions) error {
	if opts == nil {
		opts = DefaultAcquireOptions()
	}

	coord := acquire.New(opts.GwPath)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req := acquire.Request{
		OutputPath: outputPath,
		Format:     opts.Format,
		Tracks:     opts.Tracks,
		Revs:       opts.Revs,
		Retries:    opts.Retries,
	}

	err := coord.Read(ctx, req, func(ev acquire.ProgressEvent) {
		fmt.Printf("[%s] %s\n", ev.Stream, ev.Text)
	})
	if err != nil {
		return fmt.Errorf("acquisition failed: %w", err)
	}
	fmt.Printf("Acquired %s\n", outputPath)
	return nil
}
