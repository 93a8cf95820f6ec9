package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abaddouh/fakeimg/internal/synth"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		width      int
		height     int
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Create a single placeholder image of the given size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("width and height must be positive, got %dx%d", width, height)
			}

			strategy, err := synth.New(a.cfg)
			if err != nil {
				return err
			}

			data, err := strategy.Synthesize(cmd.Context(), width, height)
			if err != nil {
				return fmt.Errorf("error creating placeholder image: %w", err)
			}

			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return fmt.Errorf("error writing placeholder image: %w", err)
			}

			a.logger.Info("placeholder image created", "path", outputPath, "width", width, "height", height)
			fmt.Fprintln(cmd.OutOrStdout(), outputPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 640, "Width of the placeholder image")
	cmd.Flags().IntVar(&height, "height", 480, "Height of the placeholder image")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "placeholder.jpg", "Output path for the placeholder image")

	return cmd
}
