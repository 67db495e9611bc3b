// File: internal/config/manager.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ConfigManager reads and edits the persistent configuration file. Reads merge the
// file with COSCTL_* environment variables and built-in defaults; edits only ever
// touch what is stored in the file.
type ConfigManager struct {
	configPath string
	validate   *validator.Validate
}

func NewConfigManager() (*ConfigManager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(configPath), nil
}

// Creates a manager bound to an explicit config file path
func NewConfigManagerAt(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (m *ConfigManager) Path() string {
	return m.configPath
}

func getConfigPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", ConfigDirName, ConfigFileName), nil
}

// Returns a viper instance holding only the contents of the config file
func (m *ConfigManager) fileViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(m.configPath)
	v.SetConfigType("json")

	info, err := os.Stat(m.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if info.Size() == 0 {
		return v, nil
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return v, nil
}

// Returns a viper instance layering the config file over environment and defaults
func (m *ConfigManager) effectiveViper() (*viper.Viper, error) {
	v, err := m.fileViper()
	if err != nil {
		return nil, err
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Binding makes env-only values visible to Unmarshal
	for key := range supportedKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment for %s: %w", key, err)
		}
	}

	return v, nil
}

func (m *ConfigManager) decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := m.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (m *ConfigManager) LoadConfig() (*Config, error) {
	v, err := m.effectiveViper()
	if err != nil {
		return nil, err
	}
	return m.decode(v)
}

func (m *ConfigManager) SetValue(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	kind, ok := supportedKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s. Supported keys: %s", key, strings.Join(SupportedKeys(), ", "))
	}

	typed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	v, err := m.fileViper()
	if err != nil {
		return err
	}
	v.Set(key, typed)

	// Reject the edit if the resulting configuration would not load
	check := viper.New()
	for k, val := range defaults {
		check.SetDefault(k, val)
	}
	if err := check.MergeConfigMap(v.AllSettings()); err != nil {
		return fmt.Errorf("error merging configuration: %w", err)
	}
	if _, err := m.decode(check); err != nil {
		return err
	}

	return m.write(v.AllSettings())
}

func parseValue(kind keyKind, value string) (interface{}, error) {
	switch kind {
	case kindBool:
		return strconv.ParseBool(value)
	case kindInt:
		return strconv.Atoi(value)
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		// Stored as text so the file stays readable
		return value, nil
	default:
		return value, nil
	}
}

// Returns the effective value for a key and whether it is set anywhere
func (m *ConfigManager) GetValue(key string) (interface{}, bool) {
	v, err := m.effectiveViper()
	if err != nil {
		return nil, false
	}
	key = strings.ToLower(key)
	if !v.IsSet(key) {
		return nil, false
	}
	return v.Get(key), true
}

// Removes a key from the config file. Returns false if the file did not contain it.
func (m *ConfigManager) DeleteValue(key string) (bool, error) {
	key = strings.ToLower(key)
	v, err := m.fileViper()
	if err != nil {
		return false, err
	}
	if !v.InConfig(key) {
		return false, nil
	}

	settings := v.AllSettings()
	if !deleteNested(settings, strings.Split(key, ".")) {
		return false, nil
	}

	if err := m.write(settings); err != nil {
		return false, err
	}
	return true, nil
}

// Returns all effective settings as a nested map
func (m *ConfigManager) GetAllSettings() map[string]interface{} {
	v, err := m.effectiveViper()
	if err != nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

func (m *ConfigManager) write(settings map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	out := viper.New()
	out.SetConfigType("json")
	if err := out.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := out.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	// The file may hold API keys
	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("error setting config file permissions: %w", err)
	}
	return nil
}

func deleteNested(settings map[string]interface{}, path []string) bool {
	if len(path) == 1 {
		if _, ok := settings[path[0]]; !ok {
			return false
		}
		delete(settings, path[0])
		return true
	}

	child, ok := settings[path[0]].(map[string]interface{})
	if !ok {
		return false
	}
	if !deleteNested(child, path[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(settings, path[0])
	}
	return true
}

// Returns the sorted list of keys accepted by SetValue
func SupportedKeys() []string {
	keys := make([]string, 0, len(supportedKeys))
	for k := range supportedKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
