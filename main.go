package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/etimal/s3-discover/cmd"
)

func main() {
	// Optional .env for local runs; absence is not an error.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "s3-discover",
		Short: "Discover files staged in S3 for ingestion",
	}

	rootCmd.AddCommand(cmd.NewListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
