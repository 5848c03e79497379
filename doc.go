// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reqx provides a client-side HTTP request execution pipeline
with retries, authentication, request interception, and response
validation behind a simple and familiar interface.

Create a Client to begin making requests.

	client := &reqx.Client{}
	ex, err := client.Get("https://www.example.com")
	...
	ex, err := client.Post("https://www.example.com/upload",
		"application/json", &buf)
	...
	ex, err := client.PostForm("http://example.com/form",
		url.Values{"key": {"Value"}, "id": {"123"}})

Every error returned by the client is a *failure.Error whose Kind tells
what went wrong: Initialization (the request could not be adapted),
Network, Authentication, Validation (the response was rejected),
Serialization, or Cancellation.

	if failure.KindOf(err) == failure.Validation {
		log.Printf("server said %d", ex.StatusCode())
	}

For control over how the client sends HTTP requests and receives HTTP
responses, use a custom HTTPDoer. For example, use a GoLang standard
HTTP client:

	doer := &http.Client{
		..., // See package "net/http" for detailed documentation
	}
	client := &reqx.Client{
		HTTPDoer: doer,
	}

For control over the client's retry decisions and timing, supply retry
policies built from package retry. Policies are consulted in order and
the first one which decides to retry wins:

	retryWaiter := retry.NewExpWaiter(250*time.Millisecond, 5*time.Second, time.Now())
	retryPolicy := retry.NewPolicy(retry.Times(3).And(retry.TransientErr), retryWaiter)
	client := &reqx.Client{
		RetryPolicies: []retry.Policy{retryPolicy},
	}

To authenticate requests, install authenticators from package auth and
tag each request plan with the credential it needs. A cached
authenticator refreshes its credential once for all concurrent
requests, and retries a request rejected with 401 Unauthorized:

	cache := auth.NewCache(refresher, auth.CacheConfig{})
	client := &reqx.Client{
		Authenticators: []auth.Authenticator{auth.NewCached(request.Primary, cache)},
	}
	plan, _ := request.NewPlan("GET", "https://api.example.com/me", nil)
	ex, err := client.Do(plan.WithAuth(request.Primary))

To modify every outgoing request, or to add retry rules tied to a
request modification, install interceptors from package intercept:

	client := &reqx.Client{
		Interceptors: []intercept.Interceptor{
			intercept.RequestID(intercept.DefaultRequestIDHeader),
		},
	}

By default a response with a status code outside 2XX fails with a
Validation error. Use package validate to accept other responses, and
package serialize to decode the body of an execution:

	client := &reqx.Client{
		Validator: validate.All(validate.StatusCodes(200, 404), validate.ContentType("application/json")),
	}
	ex, err := client.Get("https://api.example.com/thing")
	thing, err := serialize.Decode(ex, err, serialize.JSON[Thing]{})

For control over the client's individual attempt timeouts, set a custom
timeout policy using package timeout:

	client := &reqx.Client{
		TimeoutPolicy: timeout.Fixed(10*time.Second),
	}

To run a request plan asynchronously and receive its outcome on a
chosen context, use Go with a dispatcher from package dispatch:

	queue := dispatch.NewQueue(16)
	client.Go(plan, queue, func(ex *request.Execution, err error) {
		...
	})

To hook into the fine-grained details of the client's request execution
logic, install a handler into the appropriate handler chain. Packages
logging and metrics install ready-made handler sets:

	handlers := &reqx.HandlerGroup{}
	logging.Install(handlers, zerolog.New(os.Stderr))
	client := &reqx.Client{
		HTTPDoer: doer,
		Handlers: handlers,
	}

Package config loads retry, timeout, and credential cache settings from
defaults, YAML files, and the environment.

The helpers Get, Head, Post, PostForm, and PostJSON build a plan,
adjust it with options such as WithAuth, and run it with any Doer.
Fetch runs a plan and decodes the outcome with a serialize.Serializer:

	w, e, err := reqx.Fetch[Widget](client, plan, serialize.JSON[Widget]{})
*/
package reqx
