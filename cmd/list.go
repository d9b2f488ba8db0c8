package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/etimal/s3-discover/internal/aws/s3"
	"github.com/etimal/s3-discover/internal/config"
	"github.com/etimal/s3-discover/internal/discovery"
	"github.com/etimal/s3-discover/internal/utils"
)

func NewListCmd() *cobra.Command {
	var overrides config.Overrides
	var output string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List objects staged in the source bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg.Merge(overrides)

			listing, err := discovery.Run(context.Background(), cfg, log)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), listing, output)
		},
	}

	cmd.Flags().StringVar(&overrides.Bucket, "bucket", "", "source bucket to list")
	cmd.Flags().StringVar(&overrides.Folder, "folder", "", "source folder inside the bucket")
	cmd.Flags().StringVarP(&overrides.Region, "region", "r", "", "AWS region")
	cmd.Flags().StringVar(&overrides.RoleARN, "role-arn", "", "IAM role to assume before listing")
	cmd.Flags().StringVar(&overrides.AccessKeyID, "access-key-id", "", "explicit AWS access key ID")
	cmd.Flags().StringVar(&overrides.SecretAccessKey, "secret-access-key", "", "explicit AWS secret access key")
	cmd.Flags().IntVar(&overrides.TimeoutSeconds, "timeout", 0, "request timeout in seconds")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func render(w io.Writer, listing s3.Listing, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(listing)
	case "table", "":
		if len(listing.Records) == 0 {
			fmt.Fprintln(w, "No objects found.")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tSIZE\tLAST MODIFIED\tSTORAGE CLASS")
		for _, rec := range listing.Records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				rec.Key,
				utils.Size(rec.Size),
				utils.TimeOrDash(rec.LastModified, utils.DateTimeSec),
				rec.StorageClass)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
