package mirror

// NodeResult is the wire shape of a single node reference: the minimum
// information needed to register or re-identify an object (spec.md §6).
type NodeResult struct {
	Typename string `json:"__typename"`
	ID       string `json:"id"`
}

// PageInfo is the wire shape of a connection's pagination cursor.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// ConnectionResult is the wire shape returned by the remote for a
// queryConnection selection: a page of nodes plus pagination bookkeeping.
type ConnectionResult struct {
	TotalCount int          `json:"totalCount"`
	PageInfo   PageInfo     `json:"pageInfo"`
	Nodes      []NodeResult `json:"nodes"`
}

// OutdatedObject is one entry of findOutdated's objects list.
type OutdatedObject struct {
	Typename string
	ID       string
}

// OutdatedConnection is one entry of findOutdated's connections list.
// Cursor carries the tri-state pagination position: NoCursor() when the
// connection has never been fetched (omit `after`, start from the
// beginning), ResumeCursor(v) when it has, even if v is nil (re-query with
// `after: null` rather than restarting pagination — spec.md §4.7/§9 warn
// against conflating a nil "never fetched" cursor with a nil "fetched,
// resume from null" cursor).
type OutdatedConnection struct {
	Typename  string
	ID        string
	Fieldname string
	Cursor    Cursor
}

// Outdated is the combined result of findOutdated (spec.md §4.6).
type Outdated struct {
	Objects     []OutdatedObject
	Connections []OutdatedConnection
}
