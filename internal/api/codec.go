// Package api defines the sharedpot RPC surface: request and response
// messages, procedure names, and connect handlers and clients for the
// LedgerService and AuthService.
//
// Messages are plain Go structs carried as JSON over the Connect protocol.
// Money crosses the wire twice: requests carry decimal strings ("25.00"),
// responses carry cents alongside the same rendering.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// Codec is the JSON codec used on both ends. It is registered under the name
// "json", so it serves the application/json content type in place of
// connect's protobuf-only default.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// handlerOptions prepends the JSON codec to opts.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

// clientOptions prepends the JSON codec to opts.
func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// routes maps procedure paths to handlers.
type routes map[string]http.Handler

func (rs routes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := rs[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

func unary[Req, Res any](rs routes, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) {
	rs[procedure] = connect.NewUnaryHandler(procedure, fn, opts...)
}
