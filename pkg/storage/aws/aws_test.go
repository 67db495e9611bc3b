// File: pkg/storage/aws/aws_test.go
package aws

import (
	"context"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosctl/internal/config"
	"cosctl/internal/provider/registry"
	"cosctl/pkg/common"
)

func TestRegistration(t *testing.T) {
	reg, ok := registry.GetRegistration("aws")
	require.True(t, ok)

	assert.False(t, reg.ConfigCheck(&config.Config{}))
	assert.True(t, reg.ConfigCheck(&config.Config{AWS: config.AWSConfig{Region: "us-east-1"}}))
}

func TestClientOptions(t *testing.T) {
	var o s3.Options
	for _, fn := range clientOptions(config.AWSConfig{Endpoint: "localhost:9000/", PathStyle: true}) {
		fn(&o)
	}
	require.NotNil(t, o.BaseEndpoint)
	assert.Equal(t, "https://localhost:9000", *o.BaseEndpoint)
	assert.True(t, o.UsePathStyle)

	assert.Empty(t, clientOptions(config.AWSConfig{Region: "eu-west-1"}))
}

func TestNewAWSStorage(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	s, err := NewAWSStorage(context.Background(), config.AWSConfig{Region: "eu-west-1"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, common.AWS, s.ProviderName())
	require.NoError(t, s.Close())
}
