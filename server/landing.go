package server

import (
	"html/template"
	"net/http"

	"github.com/user/mcp-city-time/tools"
)

var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>City Time MCP Server</title>
	<style>
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			font-family: "Segoe UI", sans-serif;
			background: #0b0e14;
			color: #e6edf7;
		}
		main { max-width: 42rem; padding: 3rem 1rem; text-align: center; }
		h1 { font-size: 2.25rem; margin-bottom: 1rem; }
		.muted { color: #94a3b8; }
		.card { background: #121826; border: 1px solid #253046; border-radius: 12px; padding: 1.5rem; margin-top: 2rem; }
		code { background: #0f1420; padding: 0.5rem; border-radius: 6px; font-size: 0.9rem; }
		ul { list-style: none; padding: 0; text-align: left; }
		li { margin: 0.5rem 0; }
	</style>
</head>
<body>
	<main>
		<h1>City Time MCP Server</h1>
		<p class="muted">A simple Model Context Protocol server with a greeting tool and a city time lookup.</p>
		<div class="card">
			<h2>MCP Endpoint</h2>
			<code>{{.Endpoint}}</code>
			<p class="muted">Configure this endpoint in your MCP client to use the tools below.</p>
		</div>
		<div class="card">
			<h2>Tools</h2>
			<ul>
			{{- range .Tools}}
				<li><code>{{.Name}}</code> <span class="muted">{{.Description}}</span></li>
			{{- end}}
			</ul>
		</div>
	</main>
</body>
</html>
`))

type landingData struct {
	Endpoint string
	Tools    []tools.ToolInfo
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	data := landingData{
		Endpoint: scheme + "://" + r.Host + MCPPath,
		Tools:    s.catalog.List(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := landingTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render landing page: %v", err)
	}
}
