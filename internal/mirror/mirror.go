// Package mirror implements the local persistent mirror of a remote
// GraphQL object graph: bootstrap, object/connection registration,
// staleness discovery, query construction, and connection-page ingestion.
// It is transport-agnostic — callers execute the queries this package
// builds against whatever remote they like and feed the responses back in.
package mirror

import (
	"context"
	"database/sql"
	"time"

	"graphmirror/internal/dbexec"
	"graphmirror/internal/logging"
	"graphmirror/internal/metrics"
	"graphmirror/internal/schema"
	"graphmirror/internal/store"
	"graphmirror/internal/tracing"
)

// Mirror is the local persistent mirror of one remote object graph,
// described by a Schema and backed by one exclusively-owned database
// handle (spec.md §5).
type Mirror struct {
	opener  dbexec.Opener
	schema  schema.Schema
	txState transactionState

	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Option configures optional ambient-stack wiring on New.
type Option func(*Mirror)

// WithLogger attaches a logger; the default is logging.FromContext's
// fallback (slog.Default wrapped).
func WithLogger(l *logging.Logger) Option {
	return func(m *Mirror) { m.logger = l }
}

// WithMetrics attaches a Prometheus metrics sink; without it, metrics
// calls are no-ops.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Mirror) { m.metrics = mx }
}

// New opens a Mirror against db and s, running the idempotent bootstrap
// described in spec.md §4.3. db must not be shared with any other Mirror
// or writer (spec.md §5). New does not change the handle's pool settings;
// store.Open is what limits it to a single connection.
func New(ctx context.Context, db *sql.DB, s schema.Schema, opts ...Option) (*Mirror, error) {
	m := &Mirror{
		opener: dbexec.NewStandardExecutor(db),
		schema: s,
		logger: logging.FromContext(ctx),
	}
	for _, opt := range opts {
		opt(m)
	}

	outcome, err := store.Bootstrap(ctx, db, s)
	if m.metrics != nil {
		m.metrics.BootstrapOutcomes.WithLabelValues(bootstrapOutcomeLabel(outcome, err)).Inc()
	}
	if err != nil {
		m.logger.Error("bootstrap failed", "error", err)
		return nil, err
	}
	m.logger.Info("bootstrap complete", "outcome", bootstrapOutcomeLabel(outcome, err))
	return m, nil
}

func bootstrapOutcomeLabel(outcome store.BootstrapOutcome, err error) string {
	if err != nil {
		return "incompatible"
	}
	switch outcome {
	case store.OutcomeNoop:
		return "noop"
	case store.OutcomeInitialized:
		return "init"
	default:
		return "incompatible"
	}
}

// CreateUpdate inserts a row into updates with t converted to integer
// milliseconds since epoch, and returns its assigned id (spec.md §4.4).
// Every call yields a distinct id, even with a duplicate timestamp; the
// caller obtains one id per remote round-trip and reuses it for all
// ingestion derived from that round-trip.
func (m *Mirror) CreateUpdate(ctx context.Context, t time.Time) (id int64, err error) {
	ctx, end := tracing.StartSpan(ctx, "mirror.createUpdate")
	defer func() { end(&err) }()

	id, err = store.InsertUpdate(ctx, m.opener, t.UnixMilli())
	return id, err
}

// RegisterObject enters a transaction and delegates to the non-transactional
// core (spec.md §4.5), so larger ingestions (updateConnection,
// updateOwnData) can batch several registrations into one transaction.
func (m *Mirror) RegisterObject(ctx context.Context, typename, id string) (err error) {
	ctx, end := tracing.StartSpan(ctx, "mirror.registerObject")
	defer func() { end(&err) }()

	return m.withTransaction(ctx, func(ctx context.Context, tx dbexec.TxExecutor) error {
		return m.registerObjectTx(ctx, tx, typename, id)
	})
}

// registerObjectTx is the non-transactional registration core described in
// spec.md §4.5. It is safe to call repeatedly with the same (typename, id);
// ingestion of connection entries and own-data node links transparently
// register their children the same way.
func (m *Mirror) registerObjectTx(ctx context.Context, exec dbexec.QueryExecutor, typename, id string) error {
	existing, found, err := store.GetObject(ctx, exec, id)
	if err != nil {
		return err
	}
	if found {
		if existing.Typename == typename {
			return nil
		}
		return &InconsistentTypeError{ID: id, Existing: existing.Typename, New: typename}
	}

	def, ok := m.schema.Lookup(typename)
	if !ok {
		return ErrUnknownType
	}
	if _, isUnion := def.(schema.UnionType); isUnion {
		return ErrAmbiguousType
	}
	obj, _ := m.schema.Object(typename)

	if err := store.InsertObject(ctx, exec, id, typename); err != nil {
		return err
	}
	for _, f := range obj.ConnectionFields() {
		if err := store.InsertConnectionStub(ctx, exec, id, f.Name); err != nil {
			return err
		}
	}
	if m.metrics != nil {
		m.metrics.ObjectsRegistered.Inc()
	}
	return nil
}

// FindOutdated returns, inside a single read transaction, the objects and
// connections considered stale relative to sinceMillis (spec.md §4.6).
func (m *Mirror) FindOutdated(ctx context.Context, since time.Time) (out Outdated, err error) {
	ctx, end := tracing.StartSpan(ctx, "mirror.findOutdated")
	defer func() { end(&err) }()

	sinceMillis := since.UnixMilli()
	tx, err := m.opener.BeginTx(ctx)
	if err != nil {
		return Outdated{}, err
	}
	defer func() { _ = tx.Rollback() }()

	staleObjects, err := store.ListStaleObjects(ctx, tx, sinceMillis)
	if err != nil {
		return Outdated{}, err
	}
	staleConnections, err := store.ListStaleConnections(ctx, tx, sinceMillis)
	if err != nil {
		return Outdated{}, err
	}

	out.Objects = make([]OutdatedObject, len(staleObjects))
	for i, row := range staleObjects {
		out.Objects[i] = OutdatedObject{Typename: row.Typename, ID: row.ID}
	}
	out.Connections = make([]OutdatedConnection, len(staleConnections))
	for i, row := range staleConnections {
		c := OutdatedConnection{Typename: row.Typename, ID: row.ID, Fieldname: row.Fieldname}
		if row.LastUpdate.Valid {
			var v *string
			if row.EndCursor.Valid {
				s := row.EndCursor.String
				v = &s
			}
			c.Cursor = ResumeCursor(v)
		} else {
			c.Cursor = NoCursor()
		}
		out.Connections[i] = c
	}

	if m.metrics != nil {
		m.metrics.StaleObjects.Set(float64(len(out.Objects)))
		m.metrics.StaleConnections.Set(float64(len(out.Connections)))
	}
	return out, nil
}

// UpdateConnection ingests one page of a connection's results (spec.md
// §4.8): updates the connection's bookkeeping, registers each returned
// node (auto-registration), and appends connection_entries rows in
// response order at strictly increasing indices.
func (m *Mirror) UpdateConnection(ctx context.Context, updateID int64, objectID, fieldname string, resp ConnectionResult) (err error) {
	ctx, end := tracing.StartSpan(ctx, "mirror.updateConnection")
	defer func() { end(&err) }()

	return m.withTransaction(ctx, func(ctx context.Context, tx dbexec.TxExecutor) error {
		conn, found, err := store.GetConnection(ctx, tx, objectID, fieldname)
		if err != nil {
			return err
		}
		if !found {
			return ErrUnknownConnection
		}

		if err := store.UpdateConnectionMeta(ctx, tx, conn.ID, updateID, resp.TotalCount, resp.PageInfo.HasNextPage, resp.PageInfo.EndCursor); err != nil {
			return err
		}

		nextIdx, err := store.NextConnectionEntryIndex(ctx, tx, conn.ID)
		if err != nil {
			return err
		}
		for _, node := range resp.Nodes {
			if err := m.registerObjectTx(ctx, tx, node.Typename, node.ID); err != nil {
				return err
			}
			if err := store.InsertConnectionEntry(ctx, tx, conn.ID, nextIdx, node.ID); err != nil {
				return err
			}
			nextIdx++
			if m.metrics != nil {
				m.metrics.ConnectionEntries.Inc()
			}
		}
		if m.metrics != nil {
			m.metrics.ConnectionsIngested.Inc()
		}
		return nil
	})
}

// OwnDataResponse is the wire shape of one own-data refresh response
// (SPEC_FULL.md §4.10): values for the type's Primitive fields, and for
// each Node field either the linked object's reference or nil (the link is
// null).
type OwnDataResponse struct {
	Primitives map[string]interface{}
	Nodes      map[string]*NodeResult
}

// UpdateOwnData ingests one object's own-data response (SPEC_FULL.md
// §4.10): upserts its primitive columns, registers and links each Node
// field's referenced object, and sets objects.last_update.
func (m *Mirror) UpdateOwnData(ctx context.Context, updateID int64, typename, id string, resp OwnDataResponse) (err error) {
	ctx, end := tracing.StartSpan(ctx, "mirror.updateOwnData")
	defer func() { end(&err) }()

	obj, ok := m.schema.Object(typename)
	if !ok {
		return ErrUnknownType
	}

	return m.withTransaction(ctx, func(ctx context.Context, tx dbexec.TxExecutor) error {
		if err := m.registerObjectTx(ctx, tx, typename, id); err != nil {
			return err
		}

		if len(obj.PrimitiveFields()) > 0 {
			values := make(map[string]interface{}, len(obj.PrimitiveFields()))
			for _, f := range obj.PrimitiveFields() {
				values[f.Name] = resp.Primitives[f.Name]
			}
			if err := store.UpsertDataRow(ctx, tx, typename, id, values); err != nil {
				return err
			}
		}

		for _, f := range obj.NodeFields() {
			ref := resp.Nodes[f.Name]
			var childID *string
			if ref != nil {
				if err := m.registerObjectTx(ctx, tx, ref.Typename, ref.ID); err != nil {
					return err
				}
				childID = &ref.ID
			}
			if err := store.UpsertLink(ctx, tx, id, f.Name, childID); err != nil {
				return err
			}
		}

		return store.SetObjectLastUpdate(ctx, tx, id, updateID)
	})
}
