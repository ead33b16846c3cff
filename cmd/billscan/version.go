package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/billscan/internal/pipeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of billscan",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("billscan %s\n", version)
		if v, ok := pipeline.LibraryVersion(); ok {
			fmt.Printf("libtesseract %s\n", v)
		} else {
			fmt.Println("libtesseract not linked (tesseract binary driver only)")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
