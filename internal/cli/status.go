package cmd

import (
	"fmt"
	"runtime"

	"github.com/rohmanhakim/billtext/internal/build"
	"github.com/rohmanhakim/billtext/pkg/execrun"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the platform and the external OCR tools in use.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		listing := cfg.ListingURL()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Version: %s\n", build.FullVersion())
		fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Listing: %s\n", listing.String())
		fmt.Fprintf(out, "tesseract: %s\n", describeTool(cfg.TesseractPath(), "tesseract"))
		fmt.Fprintf(out, "pdftoppm: %s\n", describeTool(cfg.PdftoppmPath(), "pdftoppm"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func describeTool(explicitPath string, name string) string {
	path, err := execrun.Locate(explicitPath, name)
	if err != nil {
		return "not available (" + err.Error() + ")"
	}
	return path
}
