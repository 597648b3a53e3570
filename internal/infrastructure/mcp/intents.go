package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/dictado/pkg/domain/command"
)

const intentsURI = "dictado://intents"

type intentDescriptor struct {
	Intent command.Intent `json:"intent"`
	Slots  []command.Slot `json:"slots"`
}

type intentsResponse struct {
	ServerVersion string             `json:"server_version"`
	Intents       []intentDescriptor `json:"intents"`
}

func describeIntents() intentsResponse {
	resp := intentsResponse{ServerVersion: Version}
	for _, intent := range command.AllIntents() {
		slots := command.DeclaredSlots(intent)
		if slots == nil {
			slots = []command.Slot{}
		}
		resp.Intents = append(resp.Intents, intentDescriptor{Intent: intent, Slots: slots})
	}
	return resp
}

func (s *Server) registerIntentsResource() {
	s.mcpServer.Resource(intentsURI).
		Name(intentsURI).
		Description("Accepted intents and the slots each one declares").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := json.Marshal(describeIntents())
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      intentsURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}
