package adapters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/insightpilot/insightpilot/pkg/service"
)

func TestMongoQueryForm(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		collection string
		method     string
		body       string
		matches    bool
	}{
		{
			name:       "find with filter",
			query:      `users.find({"age": {"$gt": 30}})`,
			collection: "users",
			method:     "find",
			body:       `{"age": {"$gt": 30}}`,
			matches:    true,
		},
		{
			name:       "empty find",
			query:      "orders.find()",
			collection: "orders",
			method:     "find",
			body:       "",
			matches:    true,
		},
		{
			name:       "aggregate pipeline",
			query:      `sales.aggregate([{"$group": {"_id": "$region"}}])`,
			collection: "sales",
			method:     "aggregate",
			body:       `[{"$group": {"_id": "$region"}}]`,
			matches:    true,
		},
		{
			name:       "trailing semicolon and whitespace",
			query:      "  users.find({});  ",
			collection: "users",
			method:     "find",
			body:       "{}",
			matches:    true,
		},
		{
			name:    "plain sql",
			query:   "SELECT * FROM users",
			matches: false,
		},
		{
			name:    "unsupported method",
			query:   "users.deleteMany({})",
			matches: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			match := mongoQueryForm.FindStringSubmatch(tc.query)

			if !tc.matches {
				assert.Nil(t, match)
				return
			}

			require.NotNil(t, match)
			assert.Equal(t, tc.collection, match[1])
			assert.Equal(t, tc.method, match[2])
			assert.Equal(t, tc.body, strings.TrimSpace(match[3]))
		})
	}
}

func TestTabularize(t *testing.T) {
	oid := primitive.NewObjectID()

	docs := []bson.M{
		{"_id": oid, "name": "alice", "age": int32(30)},
		{"_id": primitive.NewObjectID(), "name": "bob", "city": "oslo"},
	}

	result := tabularize(docs)

	assert.Equal(t, []string{"_id", "age", "city", "name"}, result.Columns)
	assert.Equal(t, 2, result.RowCount)

	// First row: _id is hex encoded, city is absent.
	assert.Equal(t, oid.Hex(), result.Rows[0][0])
	assert.Nil(t, result.Rows[0][2])
	assert.Equal(t, "alice", result.Rows[0][3])
}

func TestTabularizeEmpty(t *testing.T) {
	result := tabularize(nil)

	assert.Empty(t, result.Columns)
	assert.Equal(t, 0, result.RowCount)
	assert.NotNil(t, result.Rows)
}

func TestFlattenValue(t *testing.T) {
	assert.Nil(t, flattenValue(nil))
	assert.Equal(t, "alice", flattenValue("alice"))
	assert.Equal(t, int32(7), flattenValue(int32(7)))

	nested := flattenValue(bson.M{"a": int32(1)})
	assert.Equal(t, `{"a":1}`, nested)

	list := flattenValue(bson.A{int32(1), int32(2)})
	assert.Equal(t, `[1,2]`, list)
}

func TestMongoTypeName(t *testing.T) {
	assert.Equal(t, "string", mongoTypeName("x"))
	assert.Equal(t, "int", mongoTypeName(int64(1)))
	assert.Equal(t, "double", mongoTypeName(1.5))
	assert.Equal(t, "object", mongoTypeName(bson.M{}))
	assert.Equal(t, "array", mongoTypeName(bson.A{}))
	assert.Equal(t, "objectId", mongoTypeName(primitive.NewObjectID()))
	assert.Equal(t, "null", mongoTypeName(nil))
}

func TestEngineDetectionByPort(t *testing.T) {
	testCases := []struct {
		port   int
		engine string
	}{
		{3306, service.EngineMySQL},
		{1521, service.EngineOracle},
		{27017, service.EngineMongoDB},
		{5432, service.EnginePostgres},
		{8080, ""},
	}

	for _, tc := range testCases {
		conn := &service.Connection{Port: tc.port}
		assert.Equal(t, tc.engine, conn.Engine())
	}
}

func TestNewAdapterUnsupportedEngine(t *testing.T) {
	_, err := New(&service.Connection{Subtype: "sqlite"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database engine")
}
