package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notastransf/notastransf/internal/xlsconv"
)

func newConvertCommand() *cobra.Command {
	var skipRows int

	cmd := &cobra.Command{
		Use:   "convert [directory]",
		Short: "Rewrite downloaded .xls exports as .xlsx",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			log, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer log.Sync()

			return xlsconv.ConvertDir(dir, skipRows, log)
		},
	}

	cmd.Flags().IntVar(&skipRows, "skip-rows", 0, "rows to drop from the top of each workbook")

	return cmd
}
