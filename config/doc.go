// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads client settings from defaults, YAML, and the
environment, and turns them into retry, timeout, and credential cache
configurations.

	cfg, err := config.Load(config.WithFile("reqx.yaml"))
	if err != nil {
		...
	}
	client := &reqx.Client{}
	cfg.Apply(client)
	cache := auth.NewCache(refresher, cfg.Auth.CacheConfig())

A YAML file mirrors the structure of Config:

	retry:
	  limit: 3
	  scale: 250ms
	  statuscodes: [502, 503]
	timeout:
	  attempt: 2s
	  growth: 2
	  max: 10s
*/
package config
