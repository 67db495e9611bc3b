// File: internal/config/credentials.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// HMACKeys are the S3-style access keys attached to a service credential
type HMACKeys struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// ServiceCredential mirrors the JSON document the object storage console produces
// when a service credential is created
type ServiceCredential struct {
	APIKey             string   `mapstructure:"apikey"`
	HMACKeys           HMACKeys `mapstructure:"cos_hmac_keys"`
	Endpoints          string   `mapstructure:"endpoints"`
	ResourceInstanceID string   `mapstructure:"resource_instance_id"`
	IAMAPIKeyName      string   `mapstructure:"iam_apikey_name"`
	IAMRoleCRN         string   `mapstructure:"iam_role_crn"`
	IAMServiceIDCRN    string   `mapstructure:"iam_serviceid_crn"`
}

// LoadServiceCredential reads a service credential file
func LoadServiceCredential(path string) (*ServiceCredential, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading service credential %s: %w", path, err)
	}

	var cred ServiceCredential
	if err := v.Unmarshal(&cred); err != nil {
		return nil, fmt.Errorf("error decoding service credential %s: %w", path, err)
	}
	return &cred, nil
}

// ServiceCredential resolves the credential for the cos provider: the credentials
// file, if any, with individually configured keys taking precedence
func (c COSConfig) ServiceCredential() (*ServiceCredential, error) {
	cred := &ServiceCredential{}
	if c.CredentialsFile != "" {
		loaded, err := LoadServiceCredential(c.CredentialsFile)
		if err != nil {
			return nil, err
		}
		cred = loaded
	}

	override(&cred.APIKey, c.APIKey)
	override(&cred.ResourceInstanceID, c.ResourceInstanceID)
	override(&cred.HMACKeys.AccessKeyID, c.AccessKeyID)
	override(&cred.HMACKeys.SecretAccessKey, c.SecretAccessKey)
	override(&cred.Endpoints, c.EndpointsURL)

	return cred, nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// IsConfigured reports whether enough is set for the selected authentication mode
func (c COSConfig) IsConfigured() bool {
	if c.CredentialsFile != "" {
		return true
	}
	if c.UseHMAC {
		return c.AccessKeyID != "" && c.SecretAccessKey != ""
	}
	return c.APIKey != ""
}
