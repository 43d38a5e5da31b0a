package report

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestRedisSink_Miniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisSink(client, "bluemedix:workflow:reports", 2)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Write(ctx, sampleReport(t)))
	}

	items, err := mr.List("bluemedix:workflow:reports")
	require.NoError(t, err)
	assert.Len(t, items, 2, "list is capped")

	latest, err := mr.Get("bluemedix:workflow:reports:latest")
	require.NoError(t, err)
	var doc struct {
		RunID   string  `json:"runId"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(latest), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, 1, doc.Summary.Failed)
}

func TestRedisSink_Redismock(t *testing.T) {
	rep := sampleReport(t)
	payload, err := rep.JSON()
	require.NoError(t, err)
	latest, err := latestSummary(rep)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectLPush("reports", payload).SetVal(1)
		mock.ExpectLTrim("reports", 0, 9).SetVal("OK")
		mock.ExpectSet("reports:latest", latest, 0).SetVal("OK")

		require.NoError(t, NewRedisSink(client, "reports", 10).Write(context.Background(), rep))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lpush fails", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectLPush("reports", payload).SetErr(stderrors.New("READONLY You can't write against a read only replica"))

		err := NewRedisSink(client, "reports", 10).Write(context.Background(), rep)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis lpush failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresSink(t *testing.T) {
	rep := sampleReport(t)

	t.Run("commits run and steps", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO workflow_runs").
			WithArgs("run-1", "http://localhost:5000", sqlmock.AnyArg(), sqlmock.AnyArg(), 3, 1, 1, 1).
			WillReturnResult(sqlmock.NewResult(1, 1))
		for i, rec := range rep.Results {
			mock.ExpectExec("INSERT INTO workflow_step_results").
				WithArgs("run-1", i, rec.Name, string(rec.Status), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), rec.DurationMs, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()

		require.NoError(t, NewPostgresSink(db).Write(context.Background(), rep))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on step insert failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO workflow_runs").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO workflow_step_results").WillReturnError(stderrors.New("relation does not exist"))
		mock.ExpectRollback()

		err = NewPostgresSink(db).Write(context.Background(), rep)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `failed to insert step "login"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ensure schema", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS workflow_runs").WillReturnResult(sqlmock.NewResult(0, 0))
		require.NoError(t, NewPostgresSink(db).EnsureSchema(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func newElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchSink(t *testing.T) {
	rep := sampleReport(t)

	t.Run("indexes by run id", func(t *testing.T) {
		var gotMethod, gotPath string
		var gotBody map[string]interface{}
		client := newElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod, gotPath = r.Method, r.URL.Path
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotBody)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result":"created","_id":"run-1"}`))
		})

		require.NoError(t, NewElasticsearchSink(client, "bluemedix-workflow-runs").Write(context.Background(), rep))
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "/bluemedix-workflow-runs/_doc/run-1", gotPath)
		assert.Equal(t, "run-1", gotBody["runId"])
	})

	t.Run("error status", func(t *testing.T) {
		client := newElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"mapper_parsing_exception"}}`))
		})

		err := NewElasticsearchSink(client, "runs").Write(context.Background(), rep)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mapper_parsing_exception")
	})
}

type fakeCollection struct {
	docs []interface{}
	err  error
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, document)
	return &mongo.InsertOneResult{InsertedID: "run-1"}, nil
}

func TestMongoSink(t *testing.T) {
	rep := sampleReport(t)
	coll := &fakeCollection{}

	require.NoError(t, NewMongoSink(coll).Write(context.Background(), rep))
	require.Len(t, coll.docs, 1)

	raw, err := bson.Marshal(coll.docs[0])
	require.NoError(t, err)
	var doc struct {
		ID      string   `bson:"_id"`
		Summary Summary  `bson:"summary"`
		Results []Record `bson:"results"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "run-1", doc.ID)
	assert.Equal(t, 3, doc.Summary.Total)
	assert.Len(t, doc.Results, 3)

	failing := &fakeCollection{err: stderrors.New("server selection timeout")}
	err = NewMongoSink(failing).Write(context.Background(), rep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo insert failed")
}

func TestTextfileSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "workflow_textfile_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(3)

	path := filepath.Join(t.TempDir(), "workflow.prom")
	require.NoError(t, NewTextfileSink(path, reg).Write(context.Background(), sampleReport(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workflow_textfile_test_total 3")
}
