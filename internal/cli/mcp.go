package cli

import (
	"github.com/liftlog/liftlog/internal/mcp"
)

// MCPCmd serves the MCP tools on stdin/stdout for desktop assistants, using
// the stored login.
type MCPCmd struct{}

func (c *MCPCmd) Run(app *App) error {
	client, err := app.authed()
	if err != nil {
		return err
	}
	s := mcp.New(mcp.Static(client), mcp.Config{
		Templates: app.Templates,
		Options:   app.Options,
		Version:   app.Version,
	}, app.Log)
	app.Log.Info("serving MCP on stdio")
	return mcp.ServeStdio(s)
}
