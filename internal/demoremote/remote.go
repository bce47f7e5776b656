// Package demoremote is a small in-memory stand-in for the remote GraphQL
// endpoint that internal/mirror queries through its execute collaborator. It
// serves a fixed GitHub-shaped graph (a repository, its issues, their
// comments, and the actors behind them) so that cmd/mirrorctl's demo mode
// (--refresh.demo) has a real "function execute(query) -> response" to
// exercise without reaching the network.
package demoremote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
)

// Remote serves the fixed demo graph over graphql.Do, matching the shape of
// internal/mirror's execute func(ctx, query string, vars map[string]any) ([]byte, error).
type Remote struct {
	schema graphql.Schema
}

// New builds a Remote with a freshly constructed fixture set.
func New() (*Remote, error) {
	schema, err := buildSchema(newFixtureSet())
	if err != nil {
		return nil, fmt.Errorf("demoremote: build schema: %w", err)
	}
	return &Remote{schema: schema}, nil
}

// Execute runs a GraphQL query against the demo graph in-process, matching
// internal/mirror's execute collaborator signature so a Remote can be passed
// anywhere the mirror engine expects a remote endpoint.
func (r *Remote) Execute(ctx context.Context, query string, variables map[string]interface{}) ([]byte, error) {
	result := graphql.Do(graphql.Params{
		Schema:         r.schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("demoremote: graphql errors: %v", result.Errors)
	}

	body, err := json.Marshal(struct {
		Data interface{} `json:"data"`
	}{Data: result.Data})
	if err != nil {
		return nil, fmt.Errorf("demoremote: marshal response: %w", err)
	}
	return body, nil
}

// Handler exposes the demo graph over HTTP with GraphiQL enabled, for
// manual exploration alongside cmd/mirrorctl --refresh.demo.
func (r *Remote) Handler() http.Handler {
	return handler.New(&handler.Config{
		Schema:   &r.schema,
		Pretty:   true,
		GraphiQL: true,
	})
}
