package adapters

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/insightpilot/insightpilot/pkg/errs"
	"github.com/insightpilot/insightpilot/pkg/service"
)

// mongoQueryForm matches the generated query shape
// collection.find({...}) or collection.aggregate([...]).
var mongoQueryForm = regexp.MustCompile(`(?s)^\s*([A-Za-z0-9_.-]+)\.(find|aggregate)\s*\((.*)\)\s*;?\s*$`)

var mongoDeniedOperators = []string{"$where", "$function", "$accumulator", "mapReduce", "eval"}

type mongoAdapter struct {
	conn *service.Connection
	opts Options

	client *mongo.Client
}

func newMongoAdapter(conn *service.Connection, opts Options) *mongoAdapter {
	return &mongoAdapter{
		conn: conn,
		opts: opts,
	}
}

func (a *mongoAdapter) Engine() string {
	return service.EngineMongoDB
}

func (a *mongoAdapter) uri() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(a.conn.Host, strconv.Itoa(a.conn.Port)),
		Path:   "/" + a.conn.Database,
	}

	if a.conn.Username != "" {
		u.User = url.UserPassword(a.conn.Username, a.conn.Password)
	}

	params := url.Values{}
	if a.conn.Username != "" {
		authSource := a.conn.Extra["authSource"]
		if authSource == "" {
			authSource = "admin"
		}
		params.Set("authSource", authSource)
	}
	for k, v := range a.conn.Extra {
		if k == "authSource" {
			continue
		}
		params.Set(k, v)
	}
	u.RawQuery = params.Encode()

	return u.String()
}

func (a *mongoAdapter) Connect(ctx context.Context) error {
	const op errs.Op = "adapters.mongo.Connect"

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(a.uri()).
		SetConnectTimeout(30*time.Second).
		SetServerSelectionTimeout(30*time.Second))
	if err != nil {
		return errs.E(op, errs.Database, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return errs.E(op, errs.Unavailable, err)
	}

	a.client = client
	a.opts.Log.Info().Str("engine", service.EngineMongoDB).Str("database", a.conn.Database).Msg("connected to target database")

	return nil
}

func (a *mongoAdapter) Close() error {
	if a.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.client.Disconnect(ctx)
	a.client = nil

	return err
}

func (a *mongoAdapter) Ping(ctx context.Context) error {
	const op errs.Op = "adapters.mongo.Ping"

	if a.client == nil {
		return errs.E(op, errs.Invalid, errs.Str("adapter is not connected"))
	}

	if err := a.client.Ping(ctx, readpref.Primary()); err != nil {
		return errs.E(op, errs.Unavailable, err)
	}

	return nil
}

// Schema infers collection layouts by sampling documents. Mongo has no
// declared schema, so field names and types come from up to ten recent
// documents per collection.
func (a *mongoAdapter) Schema(ctx context.Context) ([]*service.TableSchema, error) {
	const op errs.Op = "adapters.mongo.Schema"

	if a.client == nil {
		return nil, errs.E(op, errs.Invalid, errs.Str("adapter is not connected"))
	}

	db := a.client.Database(a.conn.Database)

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, errs.E(op, errs.Database, err)
	}
	sort.Strings(names)

	schemas := make([]*service.TableSchema, 0, len(names))

	for _, name := range names {
		cur, err := db.Collection(name).Find(ctx, bson.D{}, options.Find().SetLimit(10))
		if err != nil {
			return nil, errs.E(op, errs.Database, err)
		}

		fieldTypes := map[string]string{}

		for cur.Next(ctx) {
			var doc bson.M
			if err := cur.Decode(&doc); err != nil {
				_ = cur.Close(ctx)
				return nil, errs.E(op, errs.Database, err)
			}

			for field, value := range doc {
				if _, seen := fieldTypes[field]; !seen {
					fieldTypes[field] = mongoTypeName(value)
				}
			}
		}
		if err := cur.Err(); err != nil {
			_ = cur.Close(ctx)
			return nil, errs.E(op, errs.Database, err)
		}
		_ = cur.Close(ctx)

		fields := make([]string, 0, len(fieldTypes))
		for field := range fieldTypes {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		ts := &service.TableSchema{Name: name}
		for _, field := range fields {
			ts.Columns = append(ts.Columns, &service.ColumnSchema{
				Name:     field,
				DataType: fieldTypes[field],
				Nullable: true,
			})
		}
		if _, ok := fieldTypes["_id"]; ok {
			ts.PrimaryKeys = []string{"_id"}
		}

		schemas = append(schemas, ts)
	}

	return schemas, nil
}

// Query runs collection.find({...}) or collection.aggregate([...])
// statements. The filter or pipeline body is extended JSON.
func (a *mongoAdapter) Query(ctx context.Context, query string) (*service.QueryResult, error) {
	const op errs.Op = "adapters.mongo.Query"

	if a.client == nil {
		return nil, errs.E(op, errs.Invalid, errs.Str("adapter is not connected"))
	}

	match := mongoQueryForm.FindStringSubmatch(query)
	if match == nil {
		return nil, errs.E(op, errs.InvalidRequest, errs.Str("query must have the form collection.find({...}) or collection.aggregate([...])"))
	}

	collection, method, body := match[1], match[2], strings.TrimSpace(match[3])

	lowered := strings.ToLower(body)
	for _, denied := range mongoDeniedOperators {
		if strings.Contains(lowered, strings.ToLower(denied)) {
			return nil, errs.E(op, errs.InvalidRequest, fmt.Errorf("query contains denied operator %s", denied))
		}
	}

	coll := a.client.Database(a.conn.Database).Collection(collection)

	start := time.Now()

	var (
		cur *mongo.Cursor
		err error
	)

	switch method {
	case "find":
		if body == "" {
			body = "{}"
		}

		var filter bson.D
		if err := bson.UnmarshalExtJSON([]byte(body), false, &filter); err != nil {
			return nil, errs.E(op, errs.InvalidRequest, fmt.Errorf("invalid find filter: %w", err))
		}

		cur, err = coll.Find(ctx, filter, options.Find().SetLimit(int64(a.opts.MaxRows)))
	case "aggregate":
		var pipeline bson.A
		if err := bson.UnmarshalExtJSON([]byte(body), false, &pipeline); err != nil {
			return nil, errs.E(op, errs.InvalidRequest, fmt.Errorf("invalid aggregation pipeline: %w", err))
		}

		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: a.opts.MaxRows}})

		cur, err = coll.Aggregate(ctx, pipeline)
	}
	if err != nil {
		return nil, errs.E(op, errs.Database, err)
	}
	defer cur.Close(ctx)

	docs := []bson.M{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, errs.E(op, errs.Database, err)
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.E(op, errs.Database, err)
	}

	result := tabularize(docs)
	result.Duration = time.Since(start)
	result.Truncated = result.RowCount == a.opts.MaxRows

	return result, nil
}

func (a *mongoAdapter) TableSample(ctx context.Context, table string, limit int) (*service.QueryResult, error) {
	const op errs.Op = "adapters.mongo.TableSample"

	if limit <= 0 {
		limit = 100
	}
	if limit > a.opts.MaxRows {
		limit = a.opts.MaxRows
	}

	result, err := a.Query(ctx, fmt.Sprintf(`%s.aggregate([{"$limit": %d}])`, table, limit))
	if err != nil {
		return nil, errs.E(op, err)
	}

	return result, nil
}

// tabularize flattens documents into a column oriented result. The
// column set is the sorted union of top level fields, with _id first.
func tabularize(docs []bson.M) *service.QueryResult {
	fieldSet := map[string]bool{}
	for _, doc := range docs {
		for field := range doc {
			fieldSet[field] = true
		}
	}

	columns := make([]string, 0, len(fieldSet))
	for field := range fieldSet {
		if field == "_id" {
			continue
		}
		columns = append(columns, field)
	}
	sort.Strings(columns)

	if fieldSet["_id"] {
		columns = append([]string{"_id"}, columns...)
	}

	out := &service.QueryResult{
		Columns: columns,
		Rows:    [][]interface{}{},
	}

	for _, doc := range docs {
		row := make([]interface{}, len(columns))
		for i, column := range columns {
			row[i] = flattenValue(doc[column])
		}
		out.Rows = append(out.Rows, row)
	}

	out.RowCount = len(out.Rows)

	return out
}

// flattenValue turns nested documents and driver specific types into
// values that serialize cleanly in a tabular result.
func flattenValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return t.String()
	case bson.M, bson.D, bson.A, []interface{}:
		raw, err := bson.MarshalExtJSON(bson.M{"v": t}, false, false)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}

		s := string(raw)
		s = strings.TrimPrefix(s, `{"v":`)
		s = strings.TrimSuffix(s, `}`)

		return s
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}

func mongoTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int32, int64, int:
		return "int"
	case float64:
		return "double"
	case bson.M, bson.D:
		return "object"
	case bson.A, []interface{}:
		return "array"
	case primitive.ObjectID:
		return "objectId"
	case primitive.DateTime:
		return "date"
	case primitive.Decimal128:
		return "decimal"
	default:
		return fmt.Sprintf("%T", v)
	}
}
