package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/pkg/valang"
)

// Server implements CompilerServer. Every request compiles in its own
// pipeline, so requests run concurrently.
type Server struct {
	// Options are the defaults a request's "options" field overrides.
	Options *valang.Options
	Logger  *log.Logger
}

func New(opts *valang.Options, logger *log.Logger) *Server {
	if opts == nil {
		opts = valang.DefaultOptions()
	}
	return &Server{Options: opts, Logger: logger}
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func (s *Server) Compile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	source, ok := fields["source"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing field source")
	}
	opts, err := s.requestOptions(fields["options"])
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	file := fields["file"].GetStringValue()

	result := valang.CompileFile(file, source.GetStringValue(), opts)
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	s.logf("Compiled unit %s (%s): %d diagnostic(s)", result.UnitID, displayName(file), len(result.Diagnostics))

	resp, err := structpb.NewStruct(EncodeResult(result))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func (s *Server) EmitIR(ctx context.Context, source *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	result := valang.Compile(source.GetValue(), s.Options)
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if result.Module == nil {
		msgs := make([]string, 0, len(result.Diagnostics))
		for _, d := range result.Errors() {
			msgs = append(msgs, d.Error())
		}
		s.logf("Unit %s did not compile", result.UnitID)
		return nil, status.Error(codes.FailedPrecondition, strings.Join(msgs, "\n"))
	}
	s.logf("Emitted IR for unit %s", result.UnitID)
	return wrapperspb.Bytes(ir.Marshal(result.Module)), nil
}

// requestOptions overlays the request's options on the server defaults.
func (s *Server) requestOptions(v *structpb.Value) (*valang.Options, error) {
	opts := *s.Options
	if v == nil {
		return &opts, nil
	}
	st := v.GetStructValue()
	if st == nil {
		return nil, fmt.Errorf("options must be an object")
	}
	for name, f := range st.GetFields() {
		switch name {
		case "max_errors":
			opts.MaxErrors = int(f.GetNumberValue())
		case "warnings_as_errors":
			opts.WarningsAsErrors = f.GetBoolValue()
		case "emit_tail_calls":
			tail := f.GetBoolValue()
			opts.EmitTailCalls = &tail
		case "entry":
			opts.Entry = f.GetStringValue()
		default:
			return nil, fmt.Errorf("unknown option %q", name)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func displayName(file string) string {
	if file == "" {
		return "<input>"
	}
	return file
}

// EncodeResult renders a compile result as the Compile response object.
func EncodeResult(r *valang.Result) map[string]interface{} {
	diags := make([]interface{}, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		diags[i] = map[string]interface{}{
			"code":     string(d.Code),
			"kind":     d.Code.Kind(),
			"severity": d.Severity.String(),
			"line":     float64(d.Token.Line),
			"column":   float64(d.Token.Column),
			"start":    float64(d.Token.Offset),
			"end":      float64(d.Token.End),
			"message":  d.Message,
			"file":     d.File,
		}
	}
	out := map[string]interface{}{
		"unit_id":     r.UnitID.String(),
		"ok":          r.OK(),
		"diagnostics": diags,
		"truncated":   float64(r.Truncated),
	}
	if r.Module != nil {
		out["ir"] = ir.Pretty(r.Module)
	}
	return out
}

// Serve listens on addr and serves until the listener fails.
func Serve(addr string, srv *Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	gs := grpc.NewServer()
	Register(gs, srv)
	srv.logf("Listening on %s", lis.Addr())
	return gs.Serve(lis)
}
