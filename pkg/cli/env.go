package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "JSONATTACH_"

// EnvOverrides are context settings taken from the environment. They let
// credentials stay out of the config file.
//
//	JSONATTACH_CONTEXT               context to use when none is given
//	JSONATTACH_CODEC                 record codec
//	JSONATTACH_S3_REGION             and the other JSONATTACH_S3_* settings
type EnvOverrides struct {
	Context string `env:"CONTEXT"`
	Codec   string `env:"CODEC"`
	S3      EnvS3  `envPrefix:"S3_"`
}

// EnvS3 holds the S3 connection settings that may come from the
// environment.
type EnvS3 struct {
	Region          string `env:"REGION"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	SessionToken    string `env:"SESSION_TOKEN"`
}

// LoadEnv reads the overrides from the process environment.
func LoadEnv() (EnvOverrides, error) {
	return parseEnv(env.Options{Prefix: EnvPrefix})
}

// LoadEnvFrom reads the overrides from environ instead of the process
// environment.
func LoadEnvFrom(environ map[string]string) (EnvOverrides, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return parseEnv(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parseEnv(opts env.Options) (EnvOverrides, error) {
	var o EnvOverrides
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return EnvOverrides{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Apply returns a copy of ctx with the non-empty overrides applied. S3
// settings only apply to s3 contexts. ctx itself is not modified.
func (o EnvOverrides) Apply(ctx *Context) *Context {
	c := *ctx
	if o.Codec != "" {
		c.Codec = o.Codec
	}
	if c.StoreKind() != StoreS3 {
		return &c
	}

	var s S3Settings
	if c.S3 != nil {
		s = *c.S3
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&s.Region, o.S3.Region)
	set(&s.Endpoint, o.S3.Endpoint)
	set(&s.AccessKeyID, o.S3.AccessKeyID)
	set(&s.SecretAccessKey, o.S3.SecretAccessKey)
	set(&s.SessionToken, o.S3.SessionToken)
	c.S3 = &s
	return &c
}
