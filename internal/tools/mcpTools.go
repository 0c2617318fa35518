package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// Runner executes a named tool on the external tool server and returns its
// textual output.
type Runner interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
	ListTools(ctx context.Context) ([]string, error)
}

type mcpRunner struct {
	session *mcp.ClientSession
	logger  *logger_i.Logger
}

var runner *mcpRunner
var once sync.Once

// GetMCPRunner connects to the configured tool server over stdio. Returns nil
// when the server binary is missing or the handshake fails, so callers can
// treat tools as an optional capability.
func GetMCPRunner(ctx context.Context) Runner {
	once.Do(func() {
		log := logger_i.NewLogger("MCP Tools")

		client := mcp.NewClient(&mcp.Implementation{
			Name:    "docchat-api",
			Version: "1.0.0",
		}, nil)

		cmd := exec.Command(config.MCPServerCommand)
		session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
		if err != nil {
			log.Error("Failed to connect to tool server", "command", config.MCPServerCommand, "error", err)
			return
		}

		runner = &mcpRunner{session: session, logger: log}

		go func() {
			<-ctx.Done()
			if err := session.Close(); err != nil {
				log.Error("Failed to close tool session", "error", err)
			}
		}()
	})
	if runner == nil {
		return nil
	}
	return runner
}

func (r *mcpRunner) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "tool", name)

	callCtx, cancel := context.WithTimeout(ctx, config.MCPToolTimeout)
	defer cancel()

	res, err := r.session.CallTool(callCtx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		log.Error("Tool call failed", "error", err)
		return "", fmt.Errorf("tool %s: %w", name, err)
	}
	if res.IsError {
		return "", fmt.Errorf("tool %s reported an error: %s", name, flattenContent(res))
	}

	log.Debug("Tool call completed")
	return flattenContent(res), nil
}

func (r *mcpRunner) ListTools(ctx context.Context) ([]string, error) {
	res, err := r.session.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	return names, nil
}

func flattenContent(res *mcp.CallToolResult) string {
	var parts []string
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
