// File: cmd/cosctl/bucket_cmd.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cosctl/internal/flags"
	"cosctl/internal/provider/factory"
	"cosctl/internal/provider/registry"
	"cosctl/pkg/storage"
)

type bucketFlags struct {
	providersList []string
	provider      string
	location      string
	force         bool
}

func newBucketCmd() *cobra.Command {
	cmdFlags := bucketFlags{}

	bucketCmd := &cobra.Command{
		Use:   "bucket",
		Short: "Manage storage buckets",
		Long:  `The bucket command allows you to list, describe, create, and delete buckets on the configured providers.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List buckets",
		Long: `Lists all buckets. If no flags are provided, it queries all configured providers.
Use the --providers flag to specify which providers to query (e.g., --providers cos,aws).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			providersToQuery, err := resolveProvidersForList(cmdFlags.providersList, app.ProviderFactory)
			if err != nil {
				return err
			}

			allBuckets, err := app.StorageService.ListAllBuckets(cmd.Context(), providersToQuery)
			if err != nil {
				return err
			}

			if len(allBuckets) == 0 {
				if len(providersToQuery) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No providers configured. Supported providers:")
					for _, info := range registry.Describe() {
						fmt.Fprintf(cmd.OutOrStdout(), "  %-4s %s\n       %s\n", info.Name, info.Description, registry.ConfigHint(info.Name))
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No buckets found.")
				}
				return nil
			}

			return render(cmd, app, allBuckets, func() string {
				return app.StorageFormatter.FormatBucketList(allBuckets)
			})
		},
	}
	listCmd.Flags().StringSliceVarP(&cmdFlags.providersList, flags.Providers, flags.ProvidersShort, []string{}, "Specify providers to query (comma-separated). Defaults to all configured providers.")

	describeCmd := &cobra.Command{
		Use:   "describe [bucket-name]",
		Short: "Describe a specific bucket",
		Long:  `Provides detailed information about a bucket, including its location constraint, versioning and lifecycle rules.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			bucketName := args[0]
			providerName := providerOrDefault(app, cmdFlags.provider)

			bucketDetails, err := app.StorageService.DescribeBucket(cmd.Context(), bucketName, providerName)
			if err != nil {
				return fmt.Errorf("error describing bucket '%s' on %s: %w", bucketName, providerName, err)
			}

			return render(cmd, app, bucketDetails, func() string {
				return app.StorageFormatter.FormatBucketDetails(bucketDetails)
			})
		},
	}
	describeCmd.Flags().StringVarP(&cmdFlags.provider, flags.Provider, flags.ProviderShort, "", "The provider where the bucket resides (defaults to workflow.provider)")

	createCmd := &cobra.Command{
		Use:   "create [bucket-name]",
		Short: "Create a new bucket",
		Long: `Creates a new bucket on the specified provider. The --location flag takes the provider's
location or, for cos, a location constraint such as 'us-south-smart'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			bucketName := args[0]
			providerName := providerOrDefault(app, cmdFlags.provider)
			err = app.StorageService.CreateBucket(cmd.Context(), bucketName, providerName, cmdFlags.location)
			if err != nil {
				return fmt.Errorf("error creating bucket '%s' on %s: %w", bucketName, providerName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bucket '%s' created successfully in %s on provider %s.\n", bucketName, cmdFlags.location, providerName)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&cmdFlags.provider, flags.Provider, flags.ProviderShort, "", "The provider to create the bucket on (defaults to workflow.provider)")
	createCmd.Flags().StringVarP(&cmdFlags.location, flags.Location, flags.LocationShort, "", "The location/region to create the bucket in (required)")
	createCmd.MarkFlagRequired(flags.Location)

	deleteCmd := &cobra.Command{
		Use:   "delete [bucket-name]",
		Short: "Delete a bucket",
		Long:  `Deletes an empty bucket on the specified provider. You are asked to type the bucket name unless --force is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			bucketName := args[0]
			providerName := providerOrDefault(app, cmdFlags.provider)

			if !cmdFlags.force {
				confirmed, err := app.Prompter.Confirm(
					fmt.Sprintf("This will permanently delete bucket '%s' on %s.", bucketName, providerName),
					bucketName,
				)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
					return nil
				}
			}

			err = app.StorageService.DeleteBucket(cmd.Context(), bucketName, providerName)
			if err != nil {
				return fmt.Errorf("error deleting bucket '%s' on %s: %w", bucketName, providerName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bucket '%s' deleted successfully from provider %s.\n", bucketName, providerName)
			return nil
		},
	}
	deleteCmd.Flags().StringVarP(&cmdFlags.provider, flags.Provider, flags.ProviderShort, "", "The provider where the bucket resides (defaults to workflow.provider)")
	deleteCmd.Flags().BoolVarP(&cmdFlags.force, flags.Force, flags.ForceShort, false, "Delete without asking for confirmation")

	bucketCmd.AddCommand(listCmd, describeCmd, createCmd, deleteCmd)
	return bucketCmd
}

func resolveProvidersForList(requestedProviders []string, factory *factory.Factory) ([]string, error) {
	if len(requestedProviders) == 0 {
		return factory.GetConfiguredProviders(), nil
	}

	var validatedProviders []string
	var invalidProviders []string
	seen := make(map[string]bool)

	for _, p := range requestedProviders {
		p = strings.ToLower(strings.TrimSpace(p))

		if seen[p] {
			continue
		}
		seen[p] = true

		if registry.IsSupported(p) {
			if factory.IsConfigured(p) {
				validatedProviders = append(validatedProviders, p)
			} else {
				return nil, fmt.Errorf("provider '%s' was requested but is not configured. %s", p, registry.ConfigHint(p))
			}
		} else {
			invalidProviders = append(invalidProviders, p)
		}
	}

	if len(invalidProviders) > 0 {
		return nil, fmt.Errorf("unsupported providers requested: %v. Supported providers are: %v", invalidProviders, registry.GetSupportedProviders())
	}

	return validatedProviders, nil
}

// Falls back to the configured workflow provider when --provider is not given
func providerOrDefault(app *appContainer, provider string) string {
	if provider != "" {
		return strings.ToLower(provider)
	}
	if app.Config.Workflow.Provider != "" {
		return app.Config.Workflow.Provider
	}
	return "cos"
}

// Falls back to cos.bucket when --bucket is not given
func bucketOrDefault(app *appContainer, bucket string) (string, error) {
	if bucket != "" {
		return bucket, nil
	}
	if app.Config.COS.Bucket != "" {
		return app.Config.COS.Bucket, nil
	}
	return "", fmt.Errorf("%w: no bucket given; use --%s or 'cosctl config set cos.bucket <name>'", storage.ErrInvalidInput, flags.Bucket)
}
