package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/pkg/config"
	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

var kimLetter = map[string]interface{}{"name": "Kim", "letterContent": "Thank you", "countryId": "usa"}

type endpoint struct {
	server *httptest.Server
	calls  atomic.Int32
	last   atomic.Value
}

func newEndpoint(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) *endpoint {
	t.Helper()
	e := &endpoint{}
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.calls.Add(1)
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		e.last.Store(body)
		handle(w, r)
	}))
	t.Cleanup(e.server.Close)
	return e
}

func accepting(id string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    dto.LetterRecord{ID: id, OriginalContent: "Thank you", CountryID: "usa"},
		})
	}
}

func failing(status int) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func newClient(primary, secondary string, timeout time.Duration, opts ...Option) *Client {
	return NewClient(config.SubmissionConfig{PrimaryURL: primary, SecondaryURL: secondary, Timeout: timeout}, opts...)
}

func TestSubmitPrimarySuccessSkipsSecondary(t *testing.T) {
	primary := newEndpoint(t, accepting("p1"))
	secondary := newEndpoint(t, accepting("s1"))

	res, err := newClient(primary.server.URL, secondary.server.URL, time.Second).Submit(context.Background(), kimLetter)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Degraded)
	assert.Equal(t, SourcePrimary, res.Source)
	assert.Equal(t, "p1", res.Data.ID)
	assert.EqualValues(t, 1, primary.calls.Load())
	assert.EqualValues(t, 0, secondary.calls.Load())

	sent := primary.last.Load().(map[string]interface{})
	assert.Equal(t, "Kim", sent["name"])
	assert.Equal(t, "Kim", sent["sender"])
	assert.Equal(t, "Thank you", sent["message"])
	assert.Equal(t, "usa", sent["country"])
}

func TestSubmitFallsBackToSecondary(t *testing.T) {
	for _, tc := range []struct {
		name string
		handle func(w http.ResponseWriter, r *http.Request)
	}{
		{name: "server error", handle: failing(http.StatusInternalServerError)},
		{name: "client error", handle: failing(http.StatusBadRequest)},
		{name: "undecodable body", handle: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) }},
		{name: "reported failure", handle: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error":"boom"}`))
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			primary := newEndpoint(t, tc.handle)
			secondary := newEndpoint(t, accepting("s1"))

			res, err := newClient(primary.server.URL, secondary.server.URL, time.Second).Submit(context.Background(), kimLetter)
			require.NoError(t, err)
			assert.Equal(t, SourceSecondary, res.Source)
			assert.Equal(t, "s1", res.Data.ID)
			assert.False(t, res.Degraded)
			assert.EqualValues(t, 1, primary.calls.Load())
			assert.EqualValues(t, 1, secondary.calls.Load())
		})
	}
}

func TestSubmitTimeoutTriggersFallback(t *testing.T) {
	primary := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	secondary := newEndpoint(t, accepting("s1"))

	start := time.Now()
	res, err := newClient(primary.server.URL, secondary.server.URL, 50*time.Millisecond).Submit(context.Background(), kimLetter)
	require.NoError(t, err)
	assert.Equal(t, SourceSecondary, res.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSubmitDegradesWhenBothFail(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	secondary := newEndpoint(t, failing(http.StatusServiceUnavailable))

	res, err := newClient(unreachableURL(t), secondary.server.URL, time.Second, WithLogger(zap.New(core))).
		Submit(context.Background(), kimLetter)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Degraded)
	assert.Equal(t, SourceLocal, res.Source)
	assert.True(t, strings.HasPrefix(res.Data.ID, "local-"))
	assert.Equal(t, "Thank you", res.Data.OriginalContent)
	assert.Equal(t, "Thank you", res.Data.TranslatedContent)
	assert.Equal(t, "usa", res.Data.CountryID)
	assert.NotNil(t, res.Data.CreatedAt)
	assert.EqualValues(t, 1, secondary.calls.Load())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Thank you", logs.All()[0].ContextMap()["original_content"])

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"degraded":true`)
	assert.NotContains(t, strings.ToLower(string(raw)), `"source"`)
}

func TestSubmitWithoutEndpointsDegrades(t *testing.T) {
	res, err := newClient("", "", 0).Submit(context.Background(), map[string]interface{}{
		"sender": "Ana", "message": "Gracias", "country": "mex",
	})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "Gracias", res.Data.OriginalContent)
	assert.Equal(t, "Ana", res.Data.Name)
}

func TestSubmitValidationErrorSkipsChain(t *testing.T) {
	primary := newEndpoint(t, accepting("p1"))
	secondary := newEndpoint(t, accepting("s1"))

	res, err := newClient(primary.server.URL, secondary.server.URL, time.Second).
		Submit(context.Background(), map[string]interface{}{"name": "Kim"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Nil(t, res)
	assert.Equal(t, []string{"letterContent", "countryId"}, appErrors.FromError(err).Fields)
	assert.EqualValues(t, 0, primary.calls.Load())
	assert.EqualValues(t, 0, secondary.calls.Load())
}
