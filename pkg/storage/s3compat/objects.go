// File: pkg/storage/s3compat/objects.go
package s3compat

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"cosctl/pkg/archive"
	"cosctl/pkg/storage"
)

// S3 omits the storage class header for objects in the default class
const defaultStorageClass = "STANDARD"

func (s *Storage) ListObjects(ctx context.Context, bucketName string, prefix string) (storage.ObjectList, error) {
	s.logger.Debug("Starting S3 ListObjects operation (delimited)", "bucket", bucketName, "prefix", prefix)

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucketName),
		Delimiter: aws.String("/"),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	result := storage.ObjectList{
		BucketName:     bucketName,
		Prefix:         prefix,
		Objects:        []storage.Object{},
		CommonPrefixes: []string{},
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx, s.callOptions()...)
		if err != nil {
			return storage.ObjectList{}, bucketError("ListObjects", bucketName, err)
		}

		for _, p := range page.CommonPrefixes {
			result.CommonPrefixes = append(result.CommonPrefixes, aws.ToString(p.Prefix))
		}
		for _, obj := range page.Contents {
			result.Objects = append(result.Objects, s.mapListedObject(bucketName, obj))
		}
	}

	return result, nil
}

func (s *Storage) mapListedObject(bucketName string, obj types.Object) storage.Object {
	mapped := storage.Object{
		Key:          aws.ToString(obj.Key),
		Bucket:       bucketName,
		Provider:     s.provider,
		Size:         aws.ToInt64(obj.Size),
		StorageClass: string(obj.StorageClass),
		ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
	}
	if mapped.StorageClass == "" {
		mapped.StorageClass = defaultStorageClass
	}
	if obj.LastModified != nil {
		mapped.LastModified = *obj.LastModified
	}
	return mapped
}

func (s *Storage) DescribeObject(ctx context.Context, bucketName string, objectKey string) (storage.Object, error) {
	s.logger.Debug("Starting S3 DescribeObject operation", "bucket", bucketName, "object", objectKey)

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}, s.callOptions()...)
	if err != nil {
		return storage.Object{}, objectError("HeadObject", bucketName, objectKey, err)
	}

	obj := storage.Object{
		Key:           objectKey,
		Bucket:        bucketName,
		Provider:      s.provider,
		Size:          aws.ToInt64(out.ContentLength),
		StorageClass:  string(out.StorageClass),
		ETag:          strings.Trim(aws.ToString(out.ETag), `"`),
		ContentType:   aws.ToString(out.ContentType),
		Metadata:      out.Metadata,
		RestoreHeader: aws.ToString(out.Restore),
	}
	if obj.StorageClass == "" {
		obj.StorageClass = defaultStorageClass
	}
	if out.LastModified != nil {
		obj.LastModified = *out.LastModified
	}

	// The transition header is not part of the SDK's model, so read it off the wire response
	obj.TransitionHeader = rawHeader(out.ResultMetadata, archive.HeaderTransition)

	return obj, nil
}

func rawHeader(metadata middleware.Metadata, name string) string {
	resp, ok := awsmiddleware.GetRawResponse(metadata).(*smithyhttp.Response)
	if !ok || resp == nil || resp.Response == nil {
		return ""
	}
	return resp.Header.Get(name)
}

func (s *Storage) GetObject(ctx context.Context, bucketName string, objectKey string) (io.ReadCloser, error) {
	s.logger.Debug("Starting S3 GetObject operation", "bucket", bucketName, "object", objectKey)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}, s.callOptions()...)
	if err != nil {
		return nil, objectError("GetObject", bucketName, objectKey, err)
	}
	return out.Body, nil
}

func (s *Storage) PutObject(ctx context.Context, bucketName string, req storage.PutObjectRequest) error {
	s.logger.Debug("Starting S3 PutObject operation", "bucket", bucketName, "object", req.Key)

	if err := req.Validate(); err != nil {
		return storage.NewObjectError("PutObject", bucketName, req.Key, err)
	}

	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucketName),
		Key:      aws.String(req.Key),
		Body:     req.Body,
		Metadata: req.Metadata,
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}
	if req.ContentLength > 0 {
		input.ContentLength = aws.Int64(req.ContentLength)
	}

	if _, err := s.client.PutObject(ctx, input, s.callOptions()...); err != nil {
		return objectError("PutObject", bucketName, req.Key, err)
	}
	return nil
}

func (s *Storage) DeleteObject(ctx context.Context, bucketName string, objectKey string) error {
	s.logger.Debug("Starting S3 DeleteObject operation", "bucket", bucketName, "object", objectKey)

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}, s.callOptions()...); err != nil {
		return objectError("DeleteObject", bucketName, objectKey, err)
	}
	return nil
}

func (s *Storage) RestoreObject(ctx context.Context, bucketName string, objectKey string, req storage.RestoreRequest) error {
	req = req.WithDefaults()
	s.logger.Debug("Starting S3 RestoreObject operation", "bucket", bucketName, "object", objectKey, "days", req.Days, "tier", req.Tier)

	if err := req.Validate(); err != nil {
		return storage.NewObjectError("RestoreObject", bucketName, objectKey, err)
	}

	if _, err := s.client.RestoreObject(ctx, &s3.RestoreObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
		RestoreRequest: &types.RestoreRequest{
			Days: aws.Int32(int32(req.Days)),
			GlacierJobParameters: &types.GlacierJobParameters{
				Tier: types.Tier(req.Tier),
			},
		},
	}, s.callOptions()...); err != nil {
		return objectError("RestoreObject", bucketName, objectKey, err)
	}
	return nil
}
