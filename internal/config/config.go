// File: internal/config/config.go
package config

import "time"

const (
	ConfigFileName = "config.json"
	ConfigDirName  = "cosctl"
	EnvPrefix      = "COSCTL"
)

type COSConfig struct {
	Bucket             string `mapstructure:"bucket" validate:"omitempty,min=3,max=63"`
	Endpoint           string `mapstructure:"endpoint"`
	EndpointsURL       string `mapstructure:"endpoints_url" validate:"omitempty,url"`
	CredentialsFile    string `mapstructure:"credentials_file"`
	APIKey             string `mapstructure:"apikey"`
	ResourceInstanceID string `mapstructure:"resource_instance_id"`
	AccessKeyID        string `mapstructure:"access_key_id"`
	SecretAccessKey    string `mapstructure:"secret_access_key"`
	UseHMAC            bool   `mapstructure:"use_hmac"`
	IAMURL             string `mapstructure:"iam_url" validate:"omitempty,url"`
}

type AWSConfig struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint" validate:"omitempty,url"`
	PathStyle bool   `mapstructure:"path_style"`
}

type GCPConfig struct {
	Project string `mapstructure:"project"`
}

type WorkflowConfig struct {
	Provider    string        `mapstructure:"provider" validate:"omitempty,oneof=cos aws gcp"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RestoreDays int           `mapstructure:"restore_days" validate:"gte=1"`
}

type Config struct {
	COS      COSConfig      `mapstructure:"cos"`
	AWS      AWSConfig      `mapstructure:"aws"`
	GCP      GCPConfig      `mapstructure:"gcp"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// Defaults applied beneath the config file and environment
var defaults = map[string]interface{}{
	"workflow.provider":     "cos",
	"workflow.timeout":      2 * time.Minute,
	"workflow.restore_days": 2,
}

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
	kindDuration
)

// Keys accepted by 'cosctl config set', with the type their value must parse as
var supportedKeys = map[string]keyKind{
	"cos.bucket":               kindString,
	"cos.endpoint":             kindString,
	"cos.endpoints_url":        kindString,
	"cos.credentials_file":     kindString,
	"cos.apikey":               kindString,
	"cos.resource_instance_id": kindString,
	"cos.access_key_id":        kindString,
	"cos.secret_access_key":    kindString,
	"cos.use_hmac":             kindBool,
	"cos.iam_url":              kindString,
	"aws.region":               kindString,
	"aws.endpoint":             kindString,
	"aws.path_style":           kindBool,
	"gcp.project":              kindString,
	"workflow.provider":        kindString,
	"workflow.timeout":         kindDuration,
	"workflow.restore_days":    kindInt,
}

var secretKeys = map[string]bool{
	"cos.apikey":            true,
	"cos.secret_access_key": true,
}

// IsSecretKey reports whether a key holds a credential that should not be echoed back
func IsSecretKey(key string) bool {
	return secretKeys[key]
}
