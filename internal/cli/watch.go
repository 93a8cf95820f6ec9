package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abaddouh/fakeimg/internal/errors"
	"github.com/abaddouh/fakeimg/internal/imitator"
	"github.com/abaddouh/fakeimg/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		workers int
		initial bool
	)

	cmd := &cobra.Command{
		Use:   "watch SRC DEST",
		Short: "Keep imitating images as they appear in SRC",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dest := args[0], args[1]
			if workers <= 0 {
				workers = a.cfg.Watch.Workers
			}

			srcInfo, err := imitator.CheckPaths(src, dest)
			if err != nil {
				return err
			}
			if !srcInfo.IsDir() {
				return fmt.Errorf("watch %s: not a directory", src)
			}
			// Outputs written into SRC would be picked up and imitated again.
			if destInfo, err := os.Stat(dest); err == nil && os.SameFile(srcInfo, destInfo) {
				return errors.New(errors.KindInvalidPath, "watch", dest, "is the watched source directory")
			}

			im, err := a.imitator()
			if err != nil {
				return err
			}

			// Watch before the initial pass so files landing during it are not missed.
			w, err := watcher.New(src, a.cfg.Watch.Settle, a.logger)
			if err != nil {
				return fmt.Errorf("watch %s: %w", src, err)
			}

			if initial {
				results, err := im.Run(cmd.Context(), src, dest)
				for _, r := range results {
					fmt.Fprintln(cmd.OutOrStdout(), r.String())
				}
				if err != nil {
					w.Close()
					return err
				}
			}

			return a.watch(cmd, w, im, dest, workers)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of worker goroutines (default from config)")
	cmd.Flags().BoolVar(&initial, "initial", false, "Imitate the images already in SRC before watching")

	return cmd
}

func (a *app) watch(cmd *cobra.Command, w *watcher.Watcher, im *imitator.Imitator, dest string, workers int) error {
	g, ctx := errgroup.WithContext(cmd.Context())
	jobs := make(chan watcher.Job, 100)

	g.Go(func() error {
		defer close(jobs)
		w.Start(ctx, jobs)
		return nil
	})

	out := make(chan string)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			worker(ctx, im, dest, jobs, out)
			return nil
		})
	}

	// A single printer keeps report lines whole.
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for line := range out {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}()

	a.logger.Info("watching for images", "workers", workers, "dest", dest)
	err := g.Wait()
	close(out)
	<-printed
	return err
}

func worker(ctx context.Context, im *imitator.Imitator, dest string, jobs <-chan watcher.Job, out chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			path, err := im.Imitate(ctx, job.FilePath, dest)
			line := imitator.Result{Source: job.FilePath, Dest: path, Err: err}.String()
			select {
			case out <- line:
			case <-ctx.Done():
				return
			}
		}
	}
}
