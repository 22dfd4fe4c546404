package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"io"
	"net/http"
)

// IdempotencyHeader carries the client chosen key identifying a POST request.
const IdempotencyHeader = "Idempotency-Key"

var _ http.ResponseWriter = idemReqWriter{}

// Idempotent returns an Adapter that makes a POST endpoint safe to retry.
// GET, HEAD and OPTIONS pass through, since they are idempotent by definition,
// and so do POST requests not setting IdempotencyHeader, such as plain HTML form submissions.
//
// The first request for a key claims it atomically, so of concurrent requests
// sharing a key only one reaches handler. It records a hash of the request body,
// the URI, and the status code and body of the resulting response.
//
// A later request reusing that key (and not yet expired) gets:
//   - 409 while the first request is still processing
//   - 422 when its URI or body differs from the first request's
//   - the recorded status code and body otherwise
//
// If cache is nil, an in-memory IdemResMap is used.
//
// Cf. https://tools.ietf.org/id/draft-idempotency-header-01.html
func Idempotent(cache IdempotencyCacher) Adapter {
	if cache == nil {
		cache = NewIdemResMap()
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || key == "" {
				handler.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)

			ir, claimed := cache.SetNX(r.Context(), key, NewIdemRes(r.URL.RequestURI(), sum[:]))
			if !claimed {
				switch {
				case ir.Status == 0:
					w.WriteHeader(http.StatusConflict)

				case ir.URI != r.URL.RequestURI() || !bytes.Equal(ir.Req, sum[:]):
					w.WriteHeader(http.StatusUnprocessableEntity)

				default:
					w.WriteHeader(ir.Status)
					_, _ = w.Write(ir.Body.Bytes())
				}

				return
			}

			handler.ServeHTTP(idemReqWriter{ctx: r.Context(), c: cache, i: &ir, k: key, w: w}, r)
		})
	}
}

// An IdemRes is data from an HTTP response
// that can be reused when another request
// matches the same idempotency key.
type IdemRes struct {
	Body   *bytes.Buffer
	Req    []byte
	Status int
	URI    string
}

// idemResGob mirrors IdemRes with fields pkg gob can encode.
type idemResGob struct {
	B []byte
	R []byte
	S int
	U string
}

// NewIdemRes constructs a new IdemRes for a request to uri whose body hashes to hashedBody.
func NewIdemRes(uri string, hashedBody []byte) IdemRes {
	return IdemRes{Body: bytes.NewBuffer(nil), URI: uri, Req: hashedBody}
}

// GobDecode implements gob.GobDecoder.
func (i *IdemRes) GobDecode(b []byte) error {
	g := new(idemResGob)
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(g); err != nil {
		return err
	}

	i.Body = bytes.NewBuffer(g.B)
	i.Req, i.Status, i.URI = g.R, g.S, g.U
	return nil
}

// GobEncode implements gob.GobEncoder.
func (i IdemRes) GobEncode() ([]byte, error) {
	var body []byte
	if i.Body != nil {
		body = i.Body.Bytes()
	}

	buf := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buf).Encode(idemResGob{body, i.Req, i.Status, i.URI}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// An idemReqWriter tees a response into an IdemRes, saving it to the cache as it goes.
type idemReqWriter struct {
	ctx context.Context
	c   IdempotencyCacher
	i   *IdemRes
	k   string
	w   http.ResponseWriter
}

func (irw idemReqWriter) Header() http.Header { return irw.w.Header() }

func (irw idemReqWriter) Write(b []byte) (int, error) {
	if irw.i.Status == 0 {
		irw.WriteHeader(http.StatusOK)
	}

	n, err := irw.w.Write(b)
	if err != nil {
		return n, err
	}

	irw.i.Body.Write(b)
	irw.c.Set(irw.ctx, irw.k, *irw.i)
	return n, nil
}

func (irw idemReqWriter) WriteHeader(s int) {
	irw.w.WriteHeader(s)
	irw.i.Status = s
	irw.c.Set(irw.ctx, irw.k, *irw.i)
}
