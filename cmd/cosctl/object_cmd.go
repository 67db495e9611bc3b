// File: cmd/cosctl/object_cmd.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cosctl/internal/flags"
	"cosctl/internal/ui/watch"
	"cosctl/pkg/storage"
)

const defaultWatchInterval = 10 * time.Second

type objectFlags struct {
	provider string
	bucket   string
	prefix   string
	file     string
	force    bool
	days     int
	tier     string
	watch    bool
	interval time.Duration
}

func newObjectCmd() *cobra.Command {
	cmdFlags := objectFlags{}

	objectCmd := &cobra.Command{
		Use:   "object",
		Short: "Manage objects within a bucket",
		Long: `The object command allows you to upload, download, inspect and delete objects,
restore archived objects and follow the progress of a restore.`,
	}

	// target resolves the provider and bucket shared by every object subcommand
	target := func(app *appContainer) (string, string, error) {
		bucket, err := bucketOrDefault(app, cmdFlags.bucket)
		if err != nil {
			return "", "", err
		}
		return providerOrDefault(app, cmdFlags.provider), bucket, nil
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List objects in a bucket",
		Long:  `Lists objects and common prefixes in a bucket. Use --prefix to filter by key prefix.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			providerName, bucketName, err := target(app)
			if err != nil {
				return err
			}

			list, err := app.StorageService.ListObjects(cmd.Context(), bucketName, providerName, cmdFlags.prefix)
			if err != nil {
				return fmt.Errorf("error listing objects in bucket '%s': %w", bucketName, err)
			}

			return render(cmd, app, list, func() string {
				return app.StorageFormatter.FormatObjectList(list)
			})
		},
	}
	listCmd.Flags().StringVar(&cmdFlags.prefix, flags.Prefix, "", "Only list objects whose key starts with this prefix")

	putCmd := &cobra.Command{
		Use:   "put [object-key] [file]",
		Short: "Upload a local file as an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			providerName, bucketName, err := target(app)
			if err != nil {
				return err
			}

			key, path := args[0], args[1]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open '%s': %w", path, err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("failed to stat '%s': %w", path, err)
			}

			err = app.StorageService.PutObject(cmd.Context(), bucketName, providerName, storage.PutObjectRequest{
				Key:           key,
				Body:          f,
				ContentLength: info.Size(),
				ContentType:   mime.TypeByExtension(filepath.Ext(path)),
			})
			if err != nil {
				return fmt.Errorf("error uploading '%s' to bucket '%s': %w", key, bucketName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded '%s' to '%s/%s' (%s).\n", path, bucketName, key, storage.FormatBytes(info.Size()))
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [object-key]",
		Short: "Download an object",
		Long:  `Downloads an object to the file given with --file, or to standard output. Archived objects must be restored first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			providerName, bucketName, err := target(app)
			if err != nil {
				return err
			}

			key := args[0]
			body, err := app.StorageService.GetObject(cmd.Context(), bucketName, key, providerName)
			if err != nil {
				if errors.Is(err, storage.ErrObjectArchived) {
					return fmt.Errorf("object '%s' is archived; run 'cosctl object restore %s -b %s' and wait for the restore to complete: %w", key, key, bucketName, err)
				}
				return fmt.Errorf("error downloading '%s' from bucket '%s': %w", key, bucketName, err)
			}
			defer body.Close()

			if cmdFlags.file == "" {
				_, err = io.Copy(cmd.OutOrStdout(), body)
				return err
			}

			f, err := os.Create(cmdFlags.file)
			if err != nil {
				return fmt.Errorf("failed to create '%s': %w", cmdFlags.file, err)
			}
			n, err := io.Copy(f, body)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("failed to write '%s': %w", cmdFlags.file, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded '%s/%s' to '%s' (%s).\n", bucketName, key, cmdFlags.file, storage.FormatBytes(n))
			return nil
		},
	}
	getCmd.Flags().StringVar(&cmdFlags.file, flags.File, "", "Write the object to this file instead of standard output")

	headCmd := &cobra.Command{
		Use:   "head [object-key]",
		Short: "Describe an object",
		Long:  `Shows an object's metadata together with its decoded archive status.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			providerName, bucketName, err := target(app)
			if err != nil {
				return err
			}

			obj, err := app.StorageService.DescribeObject(cmd.Context(), bucketName, args[0], providerName)
			if err != nil {
				return fmt.Errorf("error describing '%s' in bucket '%s': %w", args[0], bucketName, err)
			}

			return render(cmd, app, obj, func() string {
				return app.StorageFormatter.FormatObjectDetails(obj)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [object-key]",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			providerName, bucketName, err := target(app)
			if err != nil {
				return err
			}

			key := args[0]
			if !cmdFlags.force {
				confirmed, err := app.Prompter.Confirm(
					fmt.Sprintf("This will permanently delete '%s' from bucket '%s'.", key, bucketName),
					key,
				)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
					return nil
				}
			}

			if err := app.StorageService.DeleteObject(cmd.Context(), bucketName, key, providerName); err != nil {
				return fmt.Errorf("error deleting '%s' from bucket '%s': %w", key, bucketName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Object '%s' deleted from bucket '%s'.\n", key, bucketName)
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&cmdFlags.force, flags.Force, flags.ForceShort, false, "Delete without asking for confirmation")

	restoreCmd := &cobra.Command{
		Use:   "restore [object-key]",
		Short: "Restore an archived object",
		Long: `Requests a temporary copy of an archived object. The copy stays available for --days days.
Use 'cosctl object status --watch' to follow the restore.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			providerName, bucketName, err := target(app)
			if err != nil {
				return err
			}

			days := cmdFlags.days
			if days <= 0 {
				days = app.Config.Workflow.RestoreDays
			}

			key := args[0]
			err = app.StorageService.RestoreObject(cmd.Context(), bucketName, key, providerName, storage.RestoreRequest{
				Days: days,
				Tier: cmdFlags.tier,
			})
			if err != nil {
				return fmt.Errorf("error restoring '%s' in bucket '%s': %w", key, bucketName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restore requested for '%s/%s' (%d days).\n", bucketName, key, days)
			return nil
		},
	}
	restoreCmd.Flags().IntVar(&cmdFlags.days, flags.Days, 0, "Days the restored copy stays available (defaults to workflow.restore_days)")
	restoreCmd.Flags().StringVar(&cmdFlags.tier, flags.Tier, storage.TierBulk, "Retrieval tier: Bulk, Standard or Expedited")

	statusCmd := &cobra.Command{
		Use:   "status [object-key]",
		Short: "Show the archive status of an object",
		Long: `Decodes the transition and restore headers of an object. With --watch the status is
polled every --interval until the object is no longer being restored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			providerName, bucketName, err := target(app)
			if err != nil {
				return err
			}

			key := args[0]
			var status storage.ArchiveStatus
			if cmdFlags.watch {
				fetch := func(ctx context.Context) (storage.ArchiveStatus, error) {
					return app.StorageService.GetArchiveStatus(ctx, bucketName, key, providerName)
				}
				label := fmt.Sprintf("%s/%s", bucketName, key)
				status, err = watch.Run(cmd.Context(), label, fetch, cmdFlags.interval, cmd.InOrStdin(), cmd.ErrOrStderr())
			} else {
				status, err = app.StorageService.GetArchiveStatus(cmd.Context(), bucketName, key, providerName)
			}
			if err != nil {
				return fmt.Errorf("error reading archive status of '%s': %w", key, err)
			}

			return render(cmd, app, status, func() string {
				return app.StorageFormatter.FormatArchiveStatus(status)
			})
		},
	}
	statusCmd.Flags().BoolVar(&cmdFlags.watch, flags.Watch, false, "Poll until the restore completes")
	statusCmd.Flags().DurationVar(&cmdFlags.interval, flags.Interval, defaultWatchInterval, "Polling interval used with --watch")

	for _, c := range []*cobra.Command{listCmd, putCmd, getCmd, headCmd, deleteCmd, restoreCmd, statusCmd} {
		c.Flags().StringVarP(&cmdFlags.provider, flags.Provider, flags.ProviderShort, "", "The provider holding the bucket (defaults to workflow.provider)")
		c.Flags().StringVarP(&cmdFlags.bucket, flags.Bucket, flags.BucketShort, "", "The bucket to operate on (defaults to cos.bucket)")
	}

	objectCmd.AddCommand(listCmd, putCmd, getCmd, headCmd, deleteCmd, restoreCmd, statusCmd)
	return objectCmd
}
