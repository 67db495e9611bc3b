// File: cmd/cosctl/endpoints_cmd.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cosctl/internal/flags"
)

type endpointsFlags struct {
	bucket string
}

type resolvedEndpoint struct {
	Bucket             string `json:"bucket" yaml:"bucket"`
	Region             string `json:"region,omitempty" yaml:"region,omitempty"`
	LocationConstraint string `json:"locationConstraint,omitempty" yaml:"locationConstraint,omitempty"`
	Endpoint           string `json:"endpoint" yaml:"endpoint"`
}

func newEndpointsCmd() *cobra.Command {
	cmdFlags := endpointsFlags{}

	endpointsCmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Inspect the Cloud Object Storage endpoint catalog",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the regions in the endpoint catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			catalog, err := app.EndpointResolver.Catalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("error fetching endpoint catalog: %w", err)
			}

			regions := catalog.Regions()
			return render(cmd, app, regions, func() string {
				return app.StorageFormatter.FormatRegions(regions)
			})
		},
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the public endpoint serving a bucket",
		Long: `Describes the bucket on cos to learn its region or location constraint and looks up
the matching public endpoint in the endpoint catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			bucketName, err := bucketOrDefault(app, cmdFlags.bucket)
			if err != nil {
				return err
			}

			bucket, err := app.StorageService.DescribeBucket(cmd.Context(), bucketName, "cos")
			if err != nil {
				return fmt.Errorf("error describing bucket '%s': %w", bucketName, err)
			}

			endpoint, err := app.EndpointResolver.Resolve(cmd.Context(), bucket.Location, bucket.LocationConstraint)
			if err != nil {
				return fmt.Errorf("error resolving endpoint for bucket '%s': %w", bucketName, err)
			}

			result := resolvedEndpoint{
				Bucket:             bucketName,
				Region:             bucket.Location,
				LocationConstraint: bucket.LocationConstraint,
				Endpoint:           endpoint,
			}
			return render(cmd, app, result, func() string {
				return endpoint
			})
		},
	}
	resolveCmd.Flags().StringVarP(&cmdFlags.bucket, flags.Bucket, flags.BucketShort, "", "The bucket to resolve (defaults to cos.bucket)")

	endpointsCmd.AddCommand(listCmd, resolveCmd)
	return endpointsCmd
}
