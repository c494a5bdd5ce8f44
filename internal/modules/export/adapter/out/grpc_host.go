package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	exportrpc "countdown/internal/modules/export/adapter/out/rpc"
	"countdown/internal/modules/export/domain"
	exportout "countdown/internal/modules/export/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout  = 3 * time.Second
	defaultCallTimeout   = 5 * time.Second
	defaultExportTimeout = 10 * time.Second
)

type GRPCHost struct {
	logOutput io.Writer
}

// NewGRPCHost launches exporter plugins over go-plugin. Plugin stderr and
// handshake logs go to logOutput; nil discards them.
func NewGRPCHost(logOutput io.Writer) exportout.Host {
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &GRPCHost{logOutput: logOutput}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	if meta.Name != "" && meta.Name != manifest.Name {
		return fmt.Errorf("plugin reports name %q, manifest says %q", meta.Name, manifest.Name)
	}
	return nil
}

func (h *GRPCHost) Export(ctx context.Context, manifest domain.Manifest, payload domain.Payload) error {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultExportTimeout)
	defer cancel()
	_, err = client.Export(callCtx, &exportrpc.ExportRequest{
		MeetingID:    payload.MeetingID,
		MeetingTitle: payload.MeetingTitle,
		MeetingDate:  payload.MeetingDate,
		SummaryText:  payload.SummaryText,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", domain.ErrExportTimeout, manifest.Name)
		}
		return fmt.Errorf("export via %s: %w", manifest.Name, err)
	}
	return nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (exportrpc.SummaryExporterClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  exportrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          exportrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "exporter." + manifest.Name,
			Output: h.logOutput,
			Level:  hclog.Warn,
		}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(exportrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(exportrpc.SummaryExporterClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
