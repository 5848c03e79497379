// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/retry"
	"github.com/gogama/reqx/timeout"
)

// The test servers act out a serverInstruction carried as the JSON body
// of each request, so one handler can play any upstream behaviour.
var (
	httpServer  = httptest.NewUnstartedServer(http.HandlerFunc(serveInstruction))
	httpsServer = httptest.NewUnstartedServer(http.HandlerFunc(serveInstruction))
	http2Server = httptest.NewUnstartedServer(http.HandlerFunc(serveInstruction))
	servers     = []*httptest.Server{httpServer, httpsServer, http2Server}
	serverNames = map[*httptest.Server]string{
		httpServer:  "http",
		httpsServer: "https",
		http2Server: "http2",
	}
)

func TestMain(m *testing.M) {
	httpServer.Start()
	httpsServer.StartTLS()
	http2Server.EnableHTTP2 = true
	http2Server.StartTLS()
	for _, server := range servers {
		if err := ping(server); err != nil {
			panic(fmt.Sprintf("test server %s did not start: %v", serverName(server), err))
		}
	}
	code := m.Run()
	for _, server := range servers {
		server.Close()
	}
	os.Exit(code)
}

// ping retries transient errors until the server answers.
func ping(server *httptest.Server) error {
	cl := &Client{
		HTTPDoer: server.Client(),
		RetryPolicies: []retry.Policy{retry.NewPolicy(
			retry.Before(10*time.Second).And(retry.TransientErr),
			retry.NewFixedWaiter(50*time.Millisecond))},
		TimeoutPolicy: timeout.Fixed(2 * time.Second),
	}
	_, err := cl.Do((&serverInstruction{StatusCode: 200}).toPlan(context.Background(), "GET", server))
	return err
}

func serverName(server *httptest.Server) string {
	name, ok := serverNames[server]
	if !ok {
		panic("unknown server")
	}
	return name
}

type bodyChunk struct {
	Pause time.Duration
	Data  []byte
}

type serverInstruction struct {
	HeaderPause time.Duration
	StatusCode  int
	Header      map[string]string
	Body        []bodyChunk
	// WantAuth, if set, is the only Authorization header accepted.
	// Requests carrying another get status 401.
	WantAuth string
}

func (i *serverInstruction) toPlan(ctx context.Context, method string, server *httptest.Server) *request.Plan {
	b, err := json.Marshal(i)
	if err != nil {
		panic(err)
	}
	p, err := request.NewPlanWithContext(ctx, method, server.URL, b)
	if err != nil {
		panic(err)
	}
	return p
}

func serveInstruction(w http.ResponseWriter, r *http.Request) {
	var i serverInstruction
	err := json.NewDecoder(r.Body).Decode(&i)
	_ = r.Body.Close()
	switch {
	case err != nil:
		http.Error(w, "bad instruction: "+err.Error(), http.StatusBadRequest)
		return
	case i.StatusCode == 0:
		http.Error(w, "instruction has no status code", http.StatusBadRequest)
		return
	case i.WantAuth != "" && r.Header.Get("Authorization") != i.WantAuth:
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f := w.(http.Flusher)
	n := 0
	for _, chunk := range i.Body {
		n += len(chunk.Data)
	}
	w.Header().Set("Content-Length", strconv.Itoa(n))
	for k, v := range i.Header {
		w.Header().Set(k, v)
	}

	time.Sleep(i.HeaderPause)
	w.WriteHeader(i.StatusCode)
	f.Flush()

	// Each chunk trickles out a byte at a time, spreading its pause over
	// the bytes, so clients can time out part way through a body.
	for _, chunk := range i.Body {
		if len(chunk.Data) == 0 {
			time.Sleep(chunk.Pause)
			continue
		}
		perByte := chunk.Pause / time.Duration(len(chunk.Data))
		for j := range chunk.Data {
			if _, err = w.Write(chunk.Data[j : j+1]); err != nil {
				return
			}
			f.Flush()
			time.Sleep(perByte)
		}
		if rest := chunk.Pause - perByte*time.Duration(len(chunk.Data)); rest > 0 {
			time.Sleep(rest)
		}
	}
}
