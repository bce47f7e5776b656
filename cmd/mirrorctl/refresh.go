package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"graphmirror/internal/gqlquery"
	"graphmirror/internal/logging"
	"graphmirror/internal/mirror"
	"graphmirror/internal/schema"
)

// executeFunc matches the shape of whatever the caller uses to reach the
// remote: render a query, get back its raw JSON response (spec.md §1's
// "function execute(query) -> response", kept external to internal/mirror).
type executeFunc func(ctx context.Context, query string, variables map[string]interface{}) ([]byte, error)

// refreshRound runs one complete createUpdate/findOutdated/query/ingest
// cycle (spec.md §8's S3-S6 scenarios): it creates one update id for the
// round (used for every connection page; each own-data refresh creates its
// own update), finds everything stale relative to staleThreshold, and
// re-queries and ingests each one, own-data refreshes before connection pages so a freshly
// registered node's primitive fields land before its children are fetched.
func refreshRound(ctx context.Context, m *mirror.Mirror, s schema.Schema, execute executeFunc, pageSize int, staleThreshold time.Duration) (err error) {
	logger := logging.FromContext(ctx)

	updateID, err := m.CreateUpdate(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("mirrorctl: create update: %w", err)
	}
	logger = logger.WithRound(fmt.Sprintf("%d", updateID))
	ctx = logging.WithLogger(ctx, logger)

	outdated, err := m.FindOutdated(ctx, time.Now().Add(-staleThreshold))
	if err != nil {
		return fmt.Errorf("mirrorctl: find outdated: %w", err)
	}
	logger.Info("refresh round starting",
		"update_id", updateID,
		"outdated_objects", len(outdated.Objects),
		"outdated_connections", len(outdated.Connections),
	)

	for _, obj := range outdated.Objects {
		if err := refreshOwnData(ctx, m, s, execute, obj); err != nil {
			logger.Warn("own-data refresh failed", "typename", obj.Typename, "id", obj.ID, "error", err.Error())
		}
	}

	for _, conn := range outdated.Connections {
		if err := refreshConnection(ctx, m, execute, updateID, conn, pageSize); err != nil {
			logger.Warn("connection refresh failed", "typename", conn.Typename, "id", conn.ID, "fieldname", conn.Fieldname, "error", err.Error())
		}
	}

	return nil
}

func refreshOwnData(ctx context.Context, m *mirror.Mirror, s schema.Schema, execute executeFunc, obj mirror.OutdatedObject) error {
	updateID, err := m.CreateUpdate(ctx, time.Now())
	if err != nil {
		return err
	}

	sel, err := mirror.QueryOwnData(s, obj.Typename)
	if err != nil {
		return fmt.Errorf("building own-data query: %w", err)
	}
	sel = sel.Args(gqlquery.Arg{Name: "id", Value: gqlquery.Literal{Value: obj.ID}})
	doc := gqlquery.Document{Fields: []gqlquery.Selection{sel}}

	body, err := execute(ctx, doc.String(), nil)
	if err != nil {
		return fmt.Errorf("executing own-data query: %w", err)
	}

	fields, err := decodeObjectFields(body, obj.Typename)
	if err != nil {
		return fmt.Errorf("decoding own-data response: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("remote returned no data for %s %s", obj.Typename, obj.ID)
	}

	objType, ok := s.Object(obj.Typename)
	if !ok {
		return mirror.ErrUnknownType
	}

	resp := mirror.OwnDataResponse{
		Primitives: make(map[string]interface{}, len(objType.PrimitiveFields())),
		Nodes:      make(map[string]*mirror.NodeResult, len(objType.NodeFields())),
	}
	for _, f := range objType.PrimitiveFields() {
		resp.Primitives[f.Name] = fields[f.Name]
	}
	for _, f := range objType.NodeFields() {
		node, err := decodeNodeResult(fields[f.Name])
		if err != nil {
			return fmt.Errorf("decoding node field %q: %w", f.Name, err)
		}
		resp.Nodes[f.Name] = node
	}

	return m.UpdateOwnData(ctx, updateID, obj.Typename, obj.ID, resp)
}

func refreshConnection(ctx context.Context, m *mirror.Mirror, execute executeFunc, updateID int64, conn mirror.OutdatedConnection, pageSize int) error {
	root := gqlquery.Field(conn.Typename).
		Args(gqlquery.Arg{Name: "id", Value: gqlquery.Literal{Value: conn.ID}}).
		Select(mirror.QueryConnection(conn.Fieldname, conn.Cursor, pageSize))
	doc := gqlquery.Document{Fields: []gqlquery.Selection{root}}

	body, err := execute(ctx, doc.String(), nil)
	if err != nil {
		return fmt.Errorf("executing connection query: %w", err)
	}

	objFields, err := decodeObjectFields(body, conn.Typename)
	if err != nil {
		return fmt.Errorf("decoding connection response: %w", err)
	}
	if objFields == nil {
		return fmt.Errorf("remote returned no data for %s %s", conn.Typename, conn.ID)
	}

	resp, err := decodeConnectionResult(objFields[conn.Fieldname])
	if err != nil {
		return fmt.Errorf("decoding connection field %q: %w", conn.Fieldname, err)
	}

	return m.UpdateConnection(ctx, updateID, conn.ID, conn.Fieldname, resp)
}

// decodeObjectFields unpacks {"data": {fieldName: {...}}} and returns the
// field map nested under fieldName, or nil if the remote returned null.
func decodeObjectFields(body []byte, fieldName string) (map[string]interface{}, error) {
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope.Data[fieldName]
	if !ok || raw == nil {
		return nil, nil
	}
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q is not an object", fieldName)
	}
	return fields, nil
}

func decodeNodeResult(raw interface{}) (*mirror.NodeResult, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("node reference is not an object")
	}
	typename, _ := m["__typename"].(string)
	id, _ := m["id"].(string)
	return &mirror.NodeResult{Typename: typename, ID: id}, nil
}

func decodeConnectionResult(raw interface{}) (mirror.ConnectionResult, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return mirror.ConnectionResult{}, fmt.Errorf("connection field is not an object")
	}

	var result mirror.ConnectionResult
	if tc, ok := obj["totalCount"].(float64); ok {
		result.TotalCount = int(tc)
	}

	if pi, ok := obj["pageInfo"].(map[string]interface{}); ok {
		result.PageInfo.HasNextPage, _ = pi["hasNextPage"].(bool)
		if ec, ok := pi["endCursor"].(string); ok {
			result.PageInfo.EndCursor = &ec
		}
	}

	nodesRaw, _ := obj["nodes"].([]interface{})
	result.Nodes = make([]mirror.NodeResult, 0, len(nodesRaw))
	for _, n := range nodesRaw {
		node, err := decodeNodeResult(n)
		if err != nil {
			return mirror.ConnectionResult{}, err
		}
		if node != nil {
			result.Nodes = append(result.Nodes, *node)
		}
	}
	return result, nil
}
