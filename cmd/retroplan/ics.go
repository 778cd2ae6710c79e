package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stride/backend/internal/service"
)

var icsFile string

var icsCmd = &cobra.Command{
	Use:   "ics",
	Short: "Preview which academic events an .ics calendar would import",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(icsFile)
		if err != nil {
			return err
		}
		defer f.Close()

		events, skipped, err := service.ParseAcademicICS(f, "preview")
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, e := range events {
			fmt.Printf("  %s %-18s %s → %s  ×%.1f  %s\n",
				green("●"), e.Type, e.StartDate, e.EndDate, e.CapacityImpact, e.Name)
		}
		fmt.Printf("\n%d recognised, %s\n", len(events), gray(fmt.Sprintf("%d skipped", skipped)))
		return nil
	},
}

func init() {
	icsCmd.Flags().StringVarP(&icsFile, "file", "f", "", ".ics file")
	_ = icsCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(icsCmd)
}
