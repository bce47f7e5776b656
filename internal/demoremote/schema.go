package demoremote

import (
	"strconv"

	"github.com/graphql-go/graphql"
)

// buildSchema assembles the GitHub-shaped GraphQL schema (Repository, Issue,
// IssueComment, and the Actor union over User/Bot/Organization) backed by a
// fixed in-memory fixtureSet, using graphql-go's object/union idiom (build
// *graphql.Object/*graphql.Union values, wire Resolve/ResolveType funcs,
// assemble a graphql.SchemaConfig).
func buildSchema(fs *fixtureSet) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"login": &graphql.Field{Type: graphql.String},
		},
	})
	botType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bot",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"login": &graphql.Field{Type: graphql.String},
		},
	})
	orgType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Organization",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"login": &graphql.Field{Type: graphql.String},
		},
	})

	actorUnion := graphql.NewUnion(graphql.UnionConfig{
		Name:  "Actor",
		Types: []*graphql.Object{userType, botType, orgType},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			a, ok := p.Value.(actor)
			if !ok {
				return userType
			}
			switch a.Typename {
			case "Bot":
				return botType
			case "Organization":
				return orgType
			default:
				return userType
			}
		},
	})

	issueCommentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "IssueComment",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"body": &graphql.Field{Type: graphql.String},
			"author": &graphql.Field{
				Type: actorUnion,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := p.Source.(issueComment)
					return fs.actors[c.AuthorID], nil
				},
			},
		},
	})

	issueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Issue",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title": &graphql.Field{Type: graphql.String},
		},
	})
	issueType.AddFieldConfig("comments", &graphql.Field{
		Type: connectionType("IssueCommentConnection", issueCommentType),
		Args: connectionArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			iss := p.Source.(issue)
			nodes := make([]interface{}, len(iss.CommentIDs))
			for i, id := range iss.CommentIDs {
				nodes[i] = fs.comments[id]
			}
			return paginate(nodes, p.Args)
		},
	})

	repositoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Repository",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})
	repositoryType.AddFieldConfig("issues", &graphql.Field{
		Type: connectionType("IssueConnection", issueType),
		Args: connectionArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			repo := p.Source.(repository)
			nodes := make([]interface{}, len(repo.IssueIDs))
			for i, id := range repo.IssueIDs {
				nodes[i] = fs.issues[id]
			}
			return paginate(nodes, p.Args)
		},
	})

	// Root query fields are named after the mirror schema's own type names
	// (Repository, Issue), not the lowerCamelCase GraphQL convention: this
	// lets cmd/mirrorctl compose an own-data query by taking the Selection
	// internal/mirror.QueryOwnData(schema, typename) already builds — whose
	// top-level field name is the typename — and just adding an id argument
	// to it, with no schema-specific query-building code of its own.
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"Repository": &graphql.Field{
				Type: repositoryType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					repo, ok := fs.repositories[id]
					if !ok {
						return nil, nil
					}
					return repo, nil
				},
			},
			"Issue": &graphql.Field{
				Type: issueType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					iss, ok := fs.issues[id]
					if !ok {
						return nil, nil
					}
					return iss, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// connectionArgs is the standard Relay-style first/after pair used by every
// connection field (spec.md §4.7/§4.8's "first, after" pagination contract).
var connectionArgs = graphql.FieldConfigArgument{
	"first": &graphql.ArgumentConfig{Type: graphql.Int},
	"after": &graphql.ArgumentConfig{Type: graphql.String},
}

func connectionType(name string, nodeType *graphql.Object) *graphql.Object {
	pageInfoType := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"endCursor":   &graphql.Field{Type: graphql.String},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"pageInfo":   &graphql.Field{Type: graphql.NewNonNull(pageInfoType)},
			"nodes":      &graphql.Field{Type: graphql.NewList(nodeType)},
		},
	})
}

// paginate slices a fixed in-memory node list using the "after" cursor as an
// opaque stringified index, matching the cursor contract tested by
// spec.md §8 (endCursor always advances forward, never re-fetches a node).
func paginate(all []interface{}, args map[string]interface{}) (map[string]interface{}, error) {
	start := 0
	if after, ok := args["after"].(string); ok && after != "" {
		idx, err := strconv.Atoi(after)
		if err == nil {
			start = idx + 1
		}
	}

	pageSize := 100
	if first, ok := args["first"].(int); ok && first > 0 {
		pageSize = first
	}

	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	if start > len(all) {
		start = len(all)
	}

	page := all[start:end]
	hasNext := end < len(all)

	var endCursor *string
	if len(page) > 0 {
		c := strconv.Itoa(end - 1)
		endCursor = &c
	}

	return map[string]interface{}{
		"totalCount": len(all),
		"pageInfo": map[string]interface{}{
			"hasNextPage": hasNext,
			"endCursor":   endCursor,
		},
		"nodes": page,
	}, nil
}
