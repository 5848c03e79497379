// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"io"
	"net/url"
)

// BodyBytes buffers a request body so that every attempt of a plan,
// retries included, sends the same bytes.
//
// The body may be nil, a string, a []byte, url.Values (sent in URL
// encoded form), an io.Reader, or an io.ReadCloser. A reader is read
// to the end, and closed afterwards if it is an io.Closer, even when
// reading fails. The first error from reading or closing is returned.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case url.Values:
		return []byte(x.Encode()), nil
	case io.Reader:
		b, err := io.ReadAll(x)
		if c, ok := x.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("reqx/request: invalid body type %T (use nil, string, []byte, url.Values, io.Reader or io.ReadCloser)", body)
	}
}
