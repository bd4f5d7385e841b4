package config

import (
	"time"

	"github.com/dmitrijs2005/milktracker/internal/configfile"
	"github.com/dmitrijs2005/milktracker/internal/flagx"
	"github.com/dmitrijs2005/milktracker/internal/timex"
)

// FileConfig is the on-disk shape of the server config. Durations accept
// "30m" style strings or integer nanoseconds.
type FileConfig struct {
	EndpointAddr                string         `json:"endpoint_addr" yaml:"endpoint_addr"`
	Storage                     string         `json:"storage" yaml:"storage"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	CORSOrigins                 []string       `json:"cors_origins" yaml:"cors_origins"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile overlays values from the file named by -c/-config. Only fields
// present in the file replace the current values. A file that cannot be
// read or decoded panics: the server must not start half-configured.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	var fc FileConfig
	if err := configfile.Load(path, &fc); err != nil {
		panic(err)
	}

	setString(&cfg.EndpointAddr, fc.EndpointAddr)
	setString(&cfg.Storage, fc.Storage)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.SecretKey, fc.SecretKey)
	if fc.AccessTokenValidityDuration.Duration > 0 {
		cfg.AccessTokenValidityDuration = time.Duration(fc.AccessTokenValidityDuration.Duration)
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	setString(&cfg.S3RootUser, fc.S3RootUser)
	setString(&cfg.S3RootPassword, fc.S3RootPassword)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3BaseEndpoint, fc.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
