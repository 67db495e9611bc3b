// File: pkg/storage/s3compat/buckets.go
package s3compat

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"cosctl/pkg/storage"
)

func (s *Storage) ListBuckets(ctx context.Context) ([]storage.Bucket, error) {
	s.logger.Debug("Starting S3 ListBuckets operation")

	buckets, err := s.listBuckets(ctx, "")
	if err != nil {
		return nil, err
	}

	// The listing does not carry location constraints, so they are looked up per bucket
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(locationLookupConcurrency)
	for i := range buckets {
		g.Go(func() error {
			constraint, err := s.getLocationConstraint(gctx, buckets[i].Name)
			if err != nil {
				s.logger.Warn("Could not retrieve bucket location", "bucket", buckets[i].Name, "error", err)
				return nil
			}
			buckets[i].LocationConstraint = constraint
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buckets, nil
}

// listBuckets pages through the bucket listing, optionally narrowed to a name prefix
func (s *Storage) listBuckets(ctx context.Context, prefix string) ([]storage.Bucket, error) {
	input := &s3.ListBucketsInput{}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var buckets []storage.Bucket
	paginator := s3.NewListBucketsPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx, s.callOptions()...)
		if err != nil {
			return nil, storage.NewBucketError("ListBuckets", prefix, classify(err))
		}
		for _, b := range page.Buckets {
			buckets = append(buckets, s.mapBucket(b))
		}
	}
	return buckets, nil
}

func (s *Storage) mapBucket(b types.Bucket) storage.Bucket {
	bucket := storage.Bucket{
		Name:       aws.ToString(b.Name),
		Provider:   s.provider,
		Location:   aws.ToString(b.BucketRegion),
		UsageBytes: -1,
	}
	if b.CreationDate != nil {
		bucket.CreatedAt = *b.CreationDate
	}
	return bucket
}

func (s *Storage) getLocationConstraint(ctx context.Context, bucketName string) (string, error) {
	out, err := s.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucketName),
	}, s.callOptions()...)
	if err != nil {
		return "", bucketError("GetBucketLocation", bucketName, err)
	}
	return string(out.LocationConstraint), nil
}

func (s *Storage) DescribeBucket(ctx context.Context, bucketName string) (storage.Bucket, error) {
	s.logger.Debug("Starting S3 DescribeBucket operation", "bucket", bucketName)

	candidates, err := s.listBuckets(ctx, bucketName)
	if err != nil {
		return storage.Bucket{}, err
	}

	var bucket *storage.Bucket
	for i := range candidates {
		if candidates[i].Name == bucketName {
			bucket = &candidates[i]
			break
		}
	}
	if bucket == nil {
		return storage.Bucket{}, storage.NewBucketError("DescribeBucket", bucketName, storage.ErrBucketNotFound)
	}

	constraint, err := s.getLocationConstraint(ctx, bucketName)
	if err != nil {
		return storage.Bucket{}, err
	}
	bucket.LocationConstraint = constraint

	// Versioning and lifecycle may be unreadable with restricted credentials; report what we can
	versioning, err := s.client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{
		Bucket: aws.String(bucketName),
	}, s.callOptions()...)
	if err != nil {
		s.logger.Warn("Could not retrieve versioning configuration", "bucket", bucketName, "error", err)
	} else {
		bucket.Versioning = &storage.Versioning{Enabled: versioning.Status == types.BucketVersioningStatusEnabled}
	}

	lifecycle, err := s.client.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucketName),
	}, s.callOptions()...)
	if err != nil {
		s.logger.Debug("No lifecycle configuration available", "bucket", bucketName, "error", err)
	} else {
		bucket.LifecycleRules = mapLifecycleRules(lifecycle.Rules)
	}

	return *bucket, nil
}

func (s *Storage) CreateBucket(ctx context.Context, bucketName string, location string) error {
	s.logger.Debug("Starting S3 CreateBucket operation", "bucket", bucketName, "location", location)

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}
	if location != "" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(location),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input, s.callOptions()...); err != nil {
		return bucketError("CreateBucket", bucketName, err)
	}
	return nil
}

func (s *Storage) DeleteBucket(ctx context.Context, bucketName string) error {
	s.logger.Debug("Starting S3 DeleteBucket operation", "bucket", bucketName)

	if _, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucketName),
	}, s.callOptions()...); err != nil {
		return bucketError("DeleteBucket", bucketName, err)
	}
	return nil
}

func mapLifecycleRules(rules []types.LifecycleRule) []storage.LifecycleRule {
	if len(rules) == 0 {
		return nil
	}

	var result []storage.LifecycleRule
	for _, r := range rules {
		if r.Status != types.ExpirationStatusEnabled {
			continue
		}

		prefix := aws.ToString(r.Prefix)
		if r.Filter != nil && r.Filter.Prefix != nil {
			prefix = *r.Filter.Prefix
		}

		for _, t := range r.Transitions {
			rule := storage.LifecycleRule{
				ID:     aws.ToString(r.ID),
				Action: fmt.Sprintf("Transition to %s", t.StorageClass),
				Condition: storage.LifecycleCondition{
					Age:    int(aws.ToInt32(t.Days)),
					Prefix: prefix,
				},
			}
			if t.Date != nil {
				rule.Condition.CreatedBefore = *t.Date
			}
			result = append(result, rule)
		}

		if r.Expiration != nil {
			rule := storage.LifecycleRule{
				ID:     aws.ToString(r.ID),
				Action: "Delete",
				Condition: storage.LifecycleCondition{
					Age:    int(aws.ToInt32(r.Expiration.Days)),
					Prefix: prefix,
				},
			}
			if r.Expiration.Date != nil {
				rule.Condition.CreatedBefore = *r.Expiration.Date
			}
			result = append(result, rule)
		}
	}
	return result
}
