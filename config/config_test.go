// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/auth"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/retry"
	"github.com/gogama/reqx/transient"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(WithoutEnv())
		require.NoError(t, err)

		exp := cfg.Retry.Exponential()
		assert.True(t, cfg.Retry.Enabled)
		assert.Equal(t, retry.DefaultLimit, exp.Limit)
		assert.Equal(t, retry.DefaultBase, exp.Base)
		assert.Equal(t, retry.DefaultScale, exp.Scale)
		assert.Equal(t, retry.DefaultCeiling, exp.Ceiling)
		assert.ElementsMatch(t, retry.DefaultMethods, exp.Methods)
		assert.ElementsMatch(t, retry.DefaultStatusCodes, exp.StatusCodes)
		assert.ElementsMatch(t, retry.DefaultCategories, exp.Categories)
		assert.Equal(t, 5*time.Second, cfg.Timeout.Attempt)
		assert.Equal(t, auth.CacheConfig{
			RefreshTimeout: auth.DefaultRefreshTimeout,
			Leeway:         auth.DefaultLeeway,
			RefreshLimit:   auth.DefaultRefreshLimit,
			RefreshWindow:  auth.DefaultRefreshWindow,
		}, cfg.Auth.CacheConfig())
		assert.Equal(t, zerolog.InfoLevel, cfg.Log.ZerologLevel())
	})
	t.Run("YAML document", func(t *testing.T) {
		cfg, err := Load(WithoutEnv(), WithYAML([]byte(`
retry:
  limit: 4
  scale: 250ms
  statuscodes: [502, 503]
  categories: [ConnLost]
timeout:
  attempt: 2s
  growth: 2
  max: 10s
log:
  level: debug
`)))
		require.NoError(t, err)

		assert.Equal(t, 4, cfg.Retry.Limit)
		assert.Equal(t, 250*time.Millisecond, cfg.Retry.Scale)
		assert.Equal(t, []int{502, 503}, cfg.Retry.StatusCodes)
		assert.Equal(t, []transient.Category{transient.ConnLost}, cfg.Retry.Exponential().Categories)
		assert.Equal(t, 2.0, cfg.Retry.Base, "unset keys keep their default")
		assert.Equal(t, 2*time.Second, cfg.Timeout.Attempt)
		assert.Equal(t, zerolog.DebugLevel, cfg.Log.ZerologLevel())
	})
	t.Run("file then document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reqx.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retry:\n  limit: 7\n  base: 3\n"), 0o600))

		cfg, err := Load(WithoutEnv(), WithFile(path), WithYAML([]byte("retry:\n  limit: 1\n")))
		require.NoError(t, err)

		assert.Equal(t, 1, cfg.Retry.Limit)
		assert.Equal(t, 3.0, cfg.Retry.Base)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(WithoutEnv(), WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope.yaml")
	})
	t.Run("leeway off", func(t *testing.T) {
		cfg, err := Load(WithoutEnv(), WithYAML([]byte("auth:\n  leeway: -1s\n")))
		require.NoError(t, err)

		assert.Equal(t, -time.Second, cfg.Auth.CacheConfig().Leeway)
		c := auth.NewCache(auth.RefresherFunc(func(_ context.Context, _ request.AuthDescriptor) (auth.Credential, error) {
			return auth.Credential{}, nil
		}), cfg.Auth.CacheConfig())
		c.Store(request.Primary, auth.Credential{Token: "t", Expiry: time.Now().Add(time.Second)})
		cred, err := c.Get(context.Background(), request.Primary)
		require.NoError(t, err)
		assert.Equal(t, "t", cred.Token)
	})
	t.Run("bad YAML", func(t *testing.T) {
		_, err := Load(WithoutEnv(), WithYAML([]byte("retry: [")))
		assert.Error(t, err)
	})
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("REQX_RETRY_LIMIT", "5")
	t.Setenv("REQX_RETRY_STATUSCODES", "502 503")
	t.Setenv("REQX_TIMEOUT_ATTEMPT", "2s")
	t.Setenv("REQX_TIMEOUT_MAX", "2s")
	t.Setenv("OTHER_RETRY_LIMIT", "9")

	t.Run("default prefix", func(t *testing.T) {
		cfg, err := Load(WithYAML([]byte("retry:\n  limit: 1\n")))
		require.NoError(t, err)

		assert.Equal(t, 5, cfg.Retry.Limit, "environment beats YAML")
		assert.Equal(t, []int{502, 503}, cfg.Retry.StatusCodes)
		assert.Equal(t, 2*time.Second, cfg.Timeout.Attempt)
	})
	t.Run("custom prefix", func(t *testing.T) {
		cfg, err := Load(WithEnvPrefix("OTHER_"))
		require.NoError(t, err)

		assert.Equal(t, 9, cfg.Retry.Limit)
		assert.Equal(t, 5*time.Second, cfg.Timeout.Attempt)
	})
	t.Run("disabled retries", func(t *testing.T) {
		t.Setenv("REQX_RETRY_ENABLED", "false")
		cfg, err := Load()
		require.NoError(t, err)

		policies := cfg.Retry.Policies()
		require.Len(t, policies, 1)
		assert.Equal(t, retry.No(), policies[0].Decide(&request.Execution{}))
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		yaml   string
		expect string
	}{
		{"base too small", "retry:\n  base: 1.5\n", "Config.Retry.Base"},
		{"ceiling below scale", "retry:\n  scale: 2h\n", "Config.Retry.Ceiling"},
		{"negative limit", "retry:\n  limit: -1\n", "Config.Retry.Limit"},
		{"bad method", "retry:\n  methods: [FETCH]\n", "Config.Retry.Methods[0]"},
		{"bad status code", "retry:\n  statuscodes: [99]\n", "Config.Retry.StatusCodes[0]"},
		{"bad category", "retry:\n  categories: [Gremlins]\n", "Config.Retry.Categories[0]"},
		{"zero attempt timeout", "timeout:\n  attempt: 0s\n", "Config.Timeout.Attempt"},
		{"shrinking timeout", "timeout:\n  growth: 0.5\n", "Config.Timeout.Growth"},
		{"zero refresh limit", "auth:\n  refreshlimit: 0\n", "Config.Auth.RefreshLimit"},
		{"bad log level", "log:\n  level: chatty\n", "Config.Log.Level"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cfg, err := Load(WithoutEnv(), WithYAML([]byte(testCase.yaml)))

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "config: invalid configuration")
			assert.Contains(t, err.Error(), testCase.expect)
		})
	}
}

func TestConfig_Policies(t *testing.T) {
	cfg, err := Load(WithoutEnv())
	require.NoError(t, err)

	t.Run("timeout", func(t *testing.T) {
		assert.Equal(t, 5*time.Second, cfg.Timeout.Policy().Timeout(&request.Execution{Attempt: 3}))
		growing := Timeout{Attempt: time.Second, Growth: 2, Max: 3 * time.Second}.Policy()
		assert.Equal(t, time.Second, growing.Timeout(&request.Execution{}))
		assert.Equal(t, 2*time.Second, growing.Timeout(&request.Execution{Attempt: 1}))
		assert.Equal(t, 3*time.Second, growing.Timeout(&request.Execution{Attempt: 2}))
	})
	t.Run("too many requests", func(t *testing.T) {
		e := &request.Execution{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
		p := retry.NewTooManyRequests(cfg.Retry.TooManyRequestsConfig())
		assert.Equal(t, retry.After(time.Second), p.Decide(e))

		r := cfg.Retry
		r.TooManyRequests.Fallback = false
		p = retry.NewTooManyRequests(r.TooManyRequestsConfig())
		assert.Equal(t, retry.No(), p.Decide(e))
	})
	t.Run("exponential", func(t *testing.T) {
		p, err := request.NewPlan("GET", "http://example.com/", nil)
		require.NoError(t, err)
		e := &request.Execution{
			Plan:     p,
			Attempt:  1,
			Response: &http.Response{StatusCode: 503},
			Err:      assert.AnError,
		}
		policies := cfg.Retry.Policies()
		require.Len(t, policies, 2)
		assert.Equal(t, retry.After(time.Second), policies[0].Decide(e))
		assert.Equal(t, retry.No(), policies[1].Decide(e))
	})
	t.Run("apply", func(t *testing.T) {
		cl := &reqx.Client{}
		cfg.Apply(cl)
		assert.Len(t, cl.RetryPolicies, 2)
		require.NotNil(t, cl.TimeoutPolicy)
		assert.Equal(t, 5*time.Second, cl.TimeoutPolicy.Timeout(&request.Execution{}))
	})
}

func TestLog_ZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, Log{Level: "warn"}.ZerologLevel())
	assert.Equal(t, zerolog.Disabled, Log{Level: "disabled"}.ZerologLevel())
	assert.Equal(t, zerolog.InfoLevel, Log{}.ZerologLevel())
	assert.Equal(t, zerolog.InfoLevel, Log{Level: "chatty"}.ZerologLevel())
}
