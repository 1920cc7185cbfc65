package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/config"
	"club-commerce-backend/internal/model"
)

func testStore(baseURL string) *Store {
	return NewStore(&config.Store{
		BaseURL: baseURL,
		Dataset: "production",
		Token:   "sk_store_token",
	})
}

func TestStoreFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/query/production", r.URL.Path)
		assert.Equal(t, "Bearer sk_store_token", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["query"], "_type")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"_id": "order.1", "_type": "order", "total": 5000},
		})
	}))
	defer srv.Close()

	var order model.Order
	err := testStore(srv.URL).Fetch(t.Context(),
		`*[_type == $type][0]`, map[string]any{"type": "order"}, &order)
	require.NoError(t, err)
	assert.Equal(t, "order.1", order.ID)
	assert.Equal(t, int64(5000), order.Total)
}

func TestStoreFetch_NullResultLeavesOutUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": null}`))
	}))
	defer srv.Close()

	var order model.Order
	err := testStore(srv.URL).Fetch(t.Context(), `*[_type == "order"][0]`, nil, &order)
	require.NoError(t, err)
	assert.Empty(t, order.ID)
}

func TestStoreGetDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var order model.Order
	err := testStore(srv.URL).GetDocument(t.Context(), "order.missing", &order)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStoreGetDocument_EmptyDocumentsIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"documents": []}`))
	}))
	defer srv.Close()

	var order model.Order
	err := testStore(srv.URL).GetDocument(t.Context(), "order.gone", &order)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStorePatch_ConflictOnRevisionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mutations []map[string]any `json:"mutations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Mutations, 1)
		patch, ok := req.Mutations[0]["patch"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "rev-1", patch["ifRevisionID"])

		http.Error(w, "revision mismatch", http.StatusConflict)
	}))
	defer srv.Close()

	err := testStore(srv.URL).Patch(t.Context(), "order.1",
		map[string]any{"status": "Paid"}, "rev-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestStoreCreateIfNotExists_SendsMutation(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/mutate/production", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"transactionId": "tx1"}`))
	}))
	defer srv.Close()

	err := testStore(srv.URL).CreateIfNotExists(t.Context(), &model.Order{
		ID: "order.1", Type: "order",
	})
	require.NoError(t, err)

	mutations, ok := got["mutations"].([]any)
	require.True(t, ok)
	require.Len(t, mutations, 1)
	mutation, ok := mutations[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, mutation, "createIfNotExists")
}

func TestStoreServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := testStore(srv.URL).Create(t.Context(), &model.Order{ID: "order.1"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
