package server_test

import (
	"context"
	"io"
	"log"
	"net"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/server"
	"github.com/funvibe/valang/pkg/valang"
)

func startServer(t *testing.T) *server.Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	server.Register(gs, server.New(nil, log.New(io.Discard, "", 0)))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return server.NewClient(conn)
}

func request(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func diagnosticsOf(resp *structpb.Struct) []*structpb.Struct {
	var out []*structpb.Struct
	for _, v := range resp.GetFields()["diagnostics"].GetListValue().GetValues() {
		out = append(out, v.GetStructValue())
	}
	return out
}

const multiError = `fn main() {
    val a: Int = true;
    val b = 2$;
    val c: Bool = 3;
}`

func TestCompileMatchesInProcess(t *testing.T) {
	client := startServer(t)
	resp, err := client.Compile(context.Background(), request(t, map[string]interface{}{
		"source": multiError,
		"file":   "main.val",
	}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	local := valang.CompileFile("main.val", multiError, nil)
	remote := diagnosticsOf(resp)
	if len(remote) != len(local.Diagnostics) {
		t.Fatalf("server returned %d diagnostics, in-process %d", len(remote), len(local.Diagnostics))
	}
	for i, d := range local.Diagnostics {
		f := remote[i].GetFields()
		if f["code"].GetStringValue() != string(d.Code) ||
			f["message"].GetStringValue() != d.Message ||
			int(f["line"].GetNumberValue()) != d.Token.Line ||
			int(f["column"].GetNumberValue()) != d.Token.Column ||
			f["file"].GetStringValue() != "main.val" {
			t.Errorf("diagnostic %d differs: %v vs %v", i, remote[i], d)
		}
	}

	fields := resp.GetFields()
	if fields["ok"].GetBoolValue() {
		t.Errorf("unit with errors reported ok")
	}
	if fields["unit_id"].GetStringValue() == "" {
		t.Errorf("missing unit id")
	}
	if _, has := fields["ir"]; has {
		t.Errorf("no IR expected for a failed unit")
	}
}

func TestCompileReturnsIR(t *testing.T) {
	client := startServer(t)
	resp, err := client.Compile(context.Background(), request(t, map[string]interface{}{
		"source": "fn add(a: Int, b: Int) -> Int { a + b }",
	}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	fields := resp.GetFields()
	if !fields["ok"].GetBoolValue() || len(diagnosticsOf(resp)) != 0 {
		t.Errorf("expected a clean unit: %v", resp)
	}
	if !strings.Contains(fields["ir"].GetStringValue(), "fn add(r0, r1) -> Int") {
		t.Errorf("IR listing missing add:\n%s", fields["ir"].GetStringValue())
	}
}

func TestCompileOptions(t *testing.T) {
	client := startServer(t)
	src := "fn f(c: Int) -> Int { match c { _ => 0, 1 => 1 } }"

	resp, err := client.Compile(context.Background(), request(t, map[string]interface{}{
		"source":  src,
		"options": map[string]interface{}{"warnings_as_errors": true},
	}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	diags := diagnosticsOf(resp)
	if resp.GetFields()["ok"].GetBoolValue() || len(diags) != 1 ||
		diags[0].GetFields()["severity"].GetStringValue() != "error" {
		t.Errorf("W001 should be promoted: %v", resp)
	}

	// the server defaults are not changed by a request
	resp, err = client.Compile(context.Background(), request(t, map[string]interface{}{"source": src}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !resp.GetFields()["ok"].GetBoolValue() {
		t.Errorf("a plain request should only warn")
	}
}

func TestCompileInvalidRequests(t *testing.T) {
	client := startServer(t)
	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{"missing source", map[string]interface{}{"file": "x.val"}},
		{"unknown option", map[string]interface{}{"source": "", "options": map[string]interface{}{"colour": true}}},
		{"options not an object", map[string]interface{}{"source": "", "options": "fast"}},
		{"bad entry", map[string]interface{}{"source": "", "options": map[string]interface{}{"entry": "a b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Compile(context.Background(), request(t, tt.fields))
			if status.Code(err) != codes.InvalidArgument {
				t.Errorf("got %v, want InvalidArgument", err)
			}
		})
	}
}

func TestEmitIR(t *testing.T) {
	client := startServer(t)

	data, err := client.EmitIR(context.Background(), "fn add(a: Int, b: Int) -> Int { a + b }")
	if err != nil {
		t.Fatalf("EmitIR: %v", err)
	}
	m, err := ir.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.Function("add") == nil {
		t.Errorf("module has no add:\n%s", ir.Pretty(m))
	}

	_, err = client.EmitIR(context.Background(), "fn f() -> Int { true }")
	if status.Code(err) != codes.FailedPrecondition || !strings.Contains(err.Error(), "T001") {
		t.Errorf("got %v, want FailedPrecondition naming T001", err)
	}
}

func TestEncodeResult(t *testing.T) {
	out := server.EncodeResult(valang.Compile("fn f() -> Int { y }", nil))
	if out["ok"] != false {
		t.Errorf("ok = %v", out["ok"])
	}
	diags := out["diagnostics"].([]interface{})
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics", len(diags))
	}
	d := diags[0].(map[string]interface{})
	if d["code"] != "R001" || d["severity"] != "error" || d["line"] != float64(1) {
		t.Errorf("unexpected diagnostic %v", d)
	}
	if _, err := structpb.NewStruct(out); err != nil {
		t.Errorf("result is not representable as a Struct: %v", err)
	}
}
