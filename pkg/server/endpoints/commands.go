package endpoints

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/socvr/chatbot-go/pkg/command"
	"github.com/socvr/chatbot-go/pkg/server"
)

var commandsPage = template.Must(template.New("commands").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Chatbot commands</title></head>
<body>
{{.}}
</body>
</html>
`))

// RegisterCommandsEndpoint registers the command reference page
func RegisterCommandsEndpoint(s *server.Server) {
	// GET /commands - HTML reference of the registry (no auth required)
	s.Router.HandleFunc("/commands", handleCommands(s.Dispatcher.Commands())).Methods("GET")
}

func handleCommands(commands []command.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := renderCommands(commands)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}
}

// commandsMarkdown lists the registry as a markdown table
func commandsMarkdown(commands []command.Command) string {
	var b strings.Builder
	b.WriteString("# Commands\n\n")
	b.WriteString("Mention the bot followed by one of these. Matching ignores case and a trailing \"please\" or \"thanks\".\n\n")
	b.WriteString("| Command | Usage | Description | Required group |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range commands {
		group := ""
		if c.RequiredGroup != nil {
			group = c.RequiredGroup.String()
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s |\n",
			escapeCell(c.Name), c.Usage, escapeCell(c.Description), group)
	}
	return b.String()
}

func renderCommands(commands []command.Command) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(commandsMarkdown(commands)), &body); err != nil {
		return nil, fmt.Errorf("failed to render commands: %w", err)
	}

	var page bytes.Buffer
	// goldmark escapes raw HTML by default, so the body is safe to embed.
	if err := commandsPage.Execute(&page, template.HTML(body.String())); err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
