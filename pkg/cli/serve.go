package cli

import (
	"log"

	"github.com/funvibe/valang/internal/server"
	"github.com/funvibe/valang/pkg/valang"
)

const defaultServeAddr = "localhost:7077"

func cmdServe(e *env, args []string) int {
	addr := defaultServeAddr
	if len(args) > 0 {
		addr = args[0]
	}
	logger := log.New(e.stderr, "valc serve: ", log.LstdFlags)
	if err := server.Serve(addr, server.New(valang.DefaultOptions(), logger)); err != nil {
		logger.Printf("Error serving: %v", err)
		return 1
	}
	return 0
}
