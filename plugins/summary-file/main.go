package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	exportrpc "countdown/internal/modules/export/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

const targetEnv = "COUNTDOWN_SUMMARY_FILE"

type server struct {
	mu sync.Mutex
}

func (s *server) GetMetadata(_ context.Context, _ *exportrpc.Empty) (*exportrpc.Metadata, error) {
	return &exportrpc.Metadata{Name: "summary-file", Version: "1.0.0"}, nil
}

func (s *server) Export(_ context.Context, in *exportrpc.ExportRequest) (*exportrpc.ExportResponse, error) {
	target := strings.TrimSpace(os.Getenv(targetEnv))
	if target == "" {
		return nil, fmt.Errorf("%s is not set", targetEnv)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target, err)
	}
	defer f.Close()
	entry := in.SummaryText
	if !strings.HasSuffix(entry, "\n") {
		entry += "\n"
	}
	if _, err := f.WriteString(entry + "\n"); err != nil {
		return nil, fmt.Errorf("append summary: %w", err)
	}
	return &exportrpc.ExportResponse{Location: target}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: exportrpc.HandshakeConfig,
		Plugins:         exportrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
