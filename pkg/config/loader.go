package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v10"
)

// DefaultSecretsDir is where the OpenFaaS gateway mounts function secrets.
const DefaultSecretsDir = "/var/openfaas/secrets"

// SecretsDirEnv overrides DefaultSecretsDir.
const SecretsDirEnv = "SECRETS_DIR"

type loader struct {
	secretsDir string
}

// Option configures Load.
type Option func(*loader)

// WithSecretsDir reads secrets from dir instead of SECRETS_DIR or the
// OpenFaaS default.
func WithSecretsDir(dir string) Option {
	return func(l *loader) { l.secretsDir = dir }
}

// Load fills cfg, a pointer to a struct, from `env` tags. String fields that
// are still empty and carry a `secret:"<name>"` tag are then read from the
// file <secrets dir>/<name>. A missing secret file leaves the field empty.
//
//	type Config struct {
//	    Port          int    `env:"PORT" envDefault:"3000"`
//	    RedisPassword string `env:"REDIS_PASSWORD" secret:"redis-password"`
//	}
func Load(cfg any, opts ...Option) error {
	l := loader{secretsDir: os.Getenv(SecretsDirEnv)}
	if l.secretsDir == "" {
		l.secretsDir = DefaultSecretsDir
	}
	for _, opt := range opts {
		opt(&l)
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return l.readSecrets(cfg)
}

func (l loader) readSecrets(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		name, ok := t.Field(i).Tag.Lookup("secret")
		field := v.Field(i)
		if !ok || name == "" || field.Kind() != reflect.String || !field.CanSet() || field.String() != "" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(l.secretsDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read secret %q: %w", name, err)
		}
		field.SetString(strings.TrimSpace(string(data)))
	}
	return nil
}
