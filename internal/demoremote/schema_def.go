package demoremote

import "graphmirror/internal/schema"

// Schema returns the mirror schema matching this package's fixed GraphQL
// graph (spec.md §8's GitHub-like scenarios), for use with cmd/mirrorctl
// --refresh.demo when no external schema file is supplied.
func Schema() (schema.Schema, error) {
	return schema.New(
		schema.Object("Repository",
			schema.ID("id"),
			schema.Connection("issues", "Issue"),
		),
		schema.Object("Issue",
			schema.ID("id"),
			schema.Primitive("title"),
			schema.Connection("comments", "IssueComment"),
		),
		schema.Object("IssueComment",
			schema.ID("id"),
			schema.Primitive("body"),
			schema.Node("author", "Actor"),
		),
		schema.Object("User",
			schema.ID("id"),
			schema.Primitive("login"),
		),
		schema.Object("Bot",
			schema.ID("id"),
			schema.Primitive("login"),
		),
		schema.Object("Organization",
			schema.ID("id"),
			schema.Primitive("login"),
		),
		schema.Union("Actor", "User", "Bot", "Organization"),
	)
}
