// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of the environment variables read by
// Load. Variable REQX_RETRY_LIMIT sets key retry.limit.
const DefaultEnvPrefix = "REQX_"

// An Option customizes Load.
type Option func(*loader)

type loader struct {
	files     []string
	docs      [][]byte
	envPrefix string
	env       bool
}

// WithFile adds a YAML configuration file. Files are loaded in the
// order given, after the defaults. A missing file is an error.
func WithFile(path string) Option {
	return func(l *loader) {
		l.files = append(l.files, path)
	}
}

// WithYAML adds an in-memory YAML document, loaded after any files.
func WithYAML(doc []byte) Option {
	return func(l *loader) {
		l.docs = append(l.docs, doc)
	}
}

// WithEnvPrefix changes the prefix of the environment variables read
// by Load.
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) {
		l.envPrefix = prefix
	}
}

// WithoutEnv stops Load from reading environment variables.
func WithoutEnv() Option {
	return func(l *loader) {
		l.env = false
	}
}

// Load builds a Config from, in increasing order of priority, the
// built-in defaults, YAML files, in-memory YAML documents, and
// environment variables. The result is validated before it is
// returned.
//
// In environment variables, list values are separated by spaces:
// REQX_RETRY_STATUSCODES="502 503".
func Load(opts ...Option) (*Config, error) {
	l := &loader{envPrefix: DefaultEnvPrefix, env: true}
	for _, opt := range opts {
		opt(l)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}
	for _, path := range l.files {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}
	for _, doc := range l.docs {
		if err := k.Load(rawbytes.Provider(doc), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: failed to load YAML: %w", err)
		}
	}
	if l.env {
		prefix := l.envPrefix
		err := k.Load(env.Provider(".", env.Opt{
			Prefix: prefix,
			TransformFunc: func(k, v string) (string, any) {
				k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, prefix)), "_", ".")
				if strings.Contains(v, " ") {
					return k, strings.Fields(v)
				}
				return k, v
			},
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("config: failed to load environment variables: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field of cfg against its constraints.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fmt.Sprintf("%s fails %q", fe.Namespace(), tagWithParam(fe))
	}
	return fmt.Errorf("config: invalid configuration: %s: %w", strings.Join(msgs, "; "), err)
}

func tagWithParam(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func defaults() map[string]any {
	return map[string]any{
		"retry.enabled":                       true,
		"retry.limit":                         2,
		"retry.base":                          2.0,
		"retry.scale":                         "500ms",
		"retry.ceiling":                       "1h",
		"retry.methods":                       []string{"GET", "HEAD", "PUT", "DELETE", "OPTIONS", "TRACE"},
		"retry.statuscodes":                   []int{408, 500, 502, 503, 504},
		"retry.categories":                    []string{"Timeout", "ConnRefused", "ConnLost", "DNS", "Unreachable"},
		"retry.toomanyrequests.limit":         2,
		"retry.toomanyrequests.maxretryafter": "30s",
		"retry.toomanyrequests.fallback":      true,

		"timeout.attempt": "5s",
		"timeout.growth":  1.0,
		"timeout.max":     "5s",

		"auth.refreshtimeout": "30s",
		"auth.leeway":         "10s",
		"auth.refreshlimit":   5,
		"auth.refreshwindow":  "1m",

		"log.level": "info",
	}
}
