// Package mongo implements the document-store connector. Queries against
// a document source are structured JSON payloads rather than SQL:
//
//	{"collection": "orders", "filter": {"status": "open"}, "limit": 50}
package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/logging"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/schema"
)

const (
	serverSelectionTimeout = 10 * time.Second

	// DefaultDocumentLimit bounds a query that does not carry its own limit.
	DefaultDocumentLimit = 100
)

// documentQuery is the JSON payload accepted by ExecuteQuery.
type documentQuery struct {
	Collection string         `json:"collection"`
	Filter     map[string]any `json:"filter"`
	Limit      int64          `json:"limit"`
}

// Connector reads from a MongoDB database.
type Connector struct {
	profile *models.ConnectionProfile
	logger  *zap.Logger
	client  *mongo.Client
	db      *mongo.Database
}

// New creates a document connector for the profile.
func New(profile *models.ConnectionProfile, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{profile: profile, logger: logger.Named("mongo")}
}

// Connect establishes and pings a client. Connecting while already
// connected is a no-op.
func (c *Connector) Connect(ctx context.Context) error {
	if c.client != nil {
		return nil
	}
	p := c.profile
	if p.Host == "" || p.Port == 0 || p.Database == "" {
		return apperrors.New(apperrors.KindMissingParameters, "host, port and database are required")
	}

	uri := buildURI(p)
	c.logger.Debug("connecting to mongodb", zap.String("uri", logging.SanitizeConnectionString(uri)))
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return apperrors.Wrap(apperrors.KindConnectionFailed, "cannot create client", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return classifyConnectError(err)
	}

	c.client = client
	c.db = client.Database(p.Database)
	c.logger.Debug("connected to mongodb", zap.String("host", p.Host), zap.String("database", p.Database))
	return nil
}

// buildURI assembles the connection string, URL-escaping credentials so
// reserved characters in passwords survive.
func buildURI(p *models.ConnectionProfile) string {
	if p.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d/",
			url.QueryEscape(p.Username), url.QueryEscape(p.Password), p.Host, p.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d/", p.Host, p.Port)
}

func classifyConnectError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication failed") || strings.Contains(msg, "auth error"):
		return apperrors.Wrap(apperrors.KindAuthenticationFailed, "authentication failed for document store", err)
	case strings.Contains(msg, "server selection") || strings.Contains(msg, "no reachable servers") ||
		strings.Contains(msg, "connection refused") || strings.Contains(msg, "deadline exceeded"):
		return apperrors.Wrap(apperrors.KindServerUnreachable, "cannot reach document store server", err)
	}
	return apperrors.Wrap(apperrors.KindConnectionFailed, "cannot connect to document store", err)
}

// ExecuteQuery runs a structured JSON find against a collection.
func (c *Connector) ExecuteQuery(ctx context.Context, query string) (*connector.QueryResult, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	var q documentQuery
	if err := json.Unmarshal([]byte(query), &q); err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedQuery, "query must be a JSON object with a collection field", err)
	}
	if q.Collection == "" {
		return nil, apperrors.New(apperrors.KindMalformedQuery, "query is missing the collection field")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultDocumentLimit
	}
	filter := q.Filter
	if filter == nil {
		filter = map[string]any{}
	}

	cursor, err := c.db.Collection(q.Collection).Find(ctx, filter, options.Find().SetLimit(q.Limit))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "find failed", err)
	}
	defer cursor.Close(ctx)

	rows, err := decodeCursor(ctx, cursor)
	if err != nil {
		return nil, err
	}
	return &connector.QueryResult{
		Rows:    rows,
		Message: "query executed successfully",
	}, nil
}

func decodeCursor(ctx context.Context, cursor *mongo.Cursor) ([]connector.Row, error) {
	rows := make([]connector.Row, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot decode document", err)
		}
		rows = append(rows, flattenDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "error iterating cursor", err)
	}
	return rows, nil
}

// flattenDocument converts driver types to plain values: ObjectIDs become
// hex strings and primitive timestamps become time.Time.
func flattenDocument(doc bson.M) connector.Row {
	row := make(connector.Row, len(doc))
	for k, v := range doc {
		row[k] = flattenValue(v)
	}
	return row
}

func flattenValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time()
	case primitive.Decimal128:
		return val.String()
	case bson.M:
		return flattenDocument(val)
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = flattenValue(item)
		}
		return out
	default:
		return v
	}
}

// DescribeSchema samples one document per collection and derives column
// types from its fields, preserving the document's field order.
func (c *Connector) DescribeSchema(ctx context.Context) (schema.Schema, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	names, err := c.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot list collections", err)
	}
	if len(names) == 0 {
		return nil, apperrors.New(apperrors.KindEmptySource, "database contains no collections")
	}

	out := make(schema.Schema, len(names))
	for _, name := range names {
		var sample bson.D
		err := c.db.Collection(name).FindOne(ctx, bson.M{}).Decode(&sample)
		if err == mongo.ErrNoDocuments {
			out[name] = []schema.Column{}
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot sample collection", err)
		}

		cols := make([]schema.Column, len(sample))
		for i, field := range sample {
			cols[i] = schema.Column{
				Name: schema.NormalizeColumnName(field.Key),
				Type: fieldType(field.Value),
			}
		}
		out[name] = cols
	}
	return out, nil
}

func fieldType(v any) string {
	switch v.(type) {
	case int32, int64:
		return schema.TypeInteger
	case float64:
		return schema.TypeFloat
	case bool:
		return schema.TypeBoolean
	case primitive.DateTime, time.Time:
		return schema.TypeDate
	default:
		return schema.TypeText
	}
}

// DumpAllData reads up to limit documents from every collection.
func (c *Connector) DumpAllData(ctx context.Context, limit int) (map[string][]connector.Row, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	names, err := c.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindQueryExecutionFailed, "cannot list collections", err)
	}
	if len(names) == 0 {
		return nil, apperrors.New(apperrors.KindEmptySource, "database contains no collections")
	}

	dump := make(map[string][]connector.Row, len(names))
	for _, name := range names {
		cursor, err := c.db.Collection(name).Find(ctx, bson.M{}, options.Find().SetLimit(int64(limit)))
		if err != nil {
			c.logger.Warn("skipping collection during dump", zap.String("collection", name), zap.Error(err))
			continue
		}
		rows, err := decodeCursor(ctx, cursor)
		cursor.Close(ctx)
		if err != nil {
			return nil, err
		}
		dump[name] = rows
	}
	return dump, nil
}

// Disconnect releases the client. Safe to call when not connected.
func (c *Connector) Disconnect() {
	if c.client == nil {
		return
	}
	if err := c.client.Disconnect(context.Background()); err != nil {
		c.logger.Warn("error disconnecting client", zap.Error(err))
	}
	c.client = nil
	c.db = nil
}

var _ connector.SourceConnector = (*Connector)(nil)
