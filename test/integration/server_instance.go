package integration

import (
	"net/http/httptest"

	"github.com/socvr/chatbot-go/pkg/audit"
	"github.com/socvr/chatbot-go/pkg/command"
	"github.com/socvr/chatbot-go/pkg/config"
	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/resolution"
	"github.com/socvr/chatbot-go/pkg/server"
	"github.com/socvr/chatbot-go/pkg/server/endpoints"
	"github.com/socvr/chatbot-go/pkg/store"
)

const webhookSecret = "integration-bridge-secret"

// ServerInstance is a running chatbot server for a single scenario
type ServerInstance struct {
	Server    *server.Server
	Resolver  *resolution.Resolver
	ServerURL string
	httpSrv   *httptest.Server
}

// StartServer wires the full stack over st and serves it on a loopback port
func StartServer(st store.Store, thresholds eligibility.Thresholds, auditor audit.Auditor) (*ServerInstance, error) {
	resolver := resolution.New(st, eligibility.New(thresholds), resolution.WithAuditor(auditor))
	dispatcher, err := command.NewDispatcher(st,
		command.Builtins(command.Deps{Resolver: resolver, Store: st}),
		command.WithAuditor(auditor),
	)
	if err != nil {
		return nil, err
	}

	cfg := &config.ChatbotConfig{WebhookSecret: webhookSecret}
	s := server.NewServer(st, dispatcher, cfg, nil, "127.0.0.1", "0")
	endpoints.RegisterAll(s)

	httpSrv := httptest.NewServer(s.Handler())
	return &ServerInstance{
		Server:    s,
		Resolver:  resolver,
		ServerURL: httpSrv.URL,
		httpSrv:   httpSrv,
	}, nil
}

// Stop shuts the server down
func (si *ServerInstance) Stop() {
	if si.httpSrv != nil {
		si.httpSrv.Close()
	}
}
