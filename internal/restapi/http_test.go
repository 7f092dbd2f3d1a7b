package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bustime.org/internal/app"
	"bustime.org/internal/appconf"
	"bustime.org/internal/categorical"
	"bustime.org/internal/dataset"
	"bustime.org/internal/estimator"
	"bustime.org/internal/logging"
	"bustime.org/internal/models"
	"bustime.org/internal/prediction"
)

const testTripsCSV = `bus,crowd,traffic,user_experience,stop1_time,stop2_time,stop3_time
12,High,Low,Good,08:00,08:07,08:15
12,Medium,High,Bad,09:00,09:06,09:20
7,Low,Low,Average,10:00,,10:12
`

type testOptions struct {
	apiKeys   []string
	env       appconf.Environment
	withModel bool
	rateLimit int
	logger    *slog.Logger
}

func testCatalog(t *testing.T) *dataset.Catalog {
	t.Helper()
	table, err := dataset.ReadCSV("singapore", strings.NewReader(testTripsCSV))
	require.NoError(t, err)
	return dataset.NewCatalog([]*dataset.Table{
		table,
		dataset.NewTable("mumbai", nil, nil),
		dataset.NewTable("pune", []string{"bus"}, [][]string{{"4"}}),
	}, 0)
}

// createTestApi builds a RestAPI over a small in-memory dataset. Fallback
// jitter is pinned to zero so predictions equal the actual minutes.
func createTestApi(t *testing.T, opts ...func(*testOptions)) *RestAPI {
	t.Helper()
	o := testOptions{env: appconf.Test, rateLimit: 1000, logger: logging.Discard()}
	for _, fn := range opts {
		fn(&o)
	}

	var est *estimator.Estimator
	var enc *categorical.Set
	if o.withModel {
		est = estimator.New(estimator.ModelFunc(func(f estimator.Features) (float64, error) {
			return 10, nil
		}), "v1-test")
		enc = categorical.FitSet([]string{"High", "Low", "Medium"}, []string{"High", "Low"}, []string{"Bad", "Good"})
	}

	cfg := appconf.Config{
		Env:       o.env,
		ApiKeys:   o.apiKeys,
		RateLimit: o.rateLimit,
		Location:  time.UTC,
	}
	application := app.New(cfg, o.logger, testCatalog(t), est, enc, prediction.WithJitter(func() int { return 0 }))
	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

func withKeys(keys ...string) func(*testOptions) {
	return func(o *testOptions) { o.apiKeys = keys }
}

func withModel() func(*testOptions) {
	return func(o *testOptions) { o.withModel = true }
}

func withEnv(env appconf.Environment) func(*testOptions) {
	return func(o *testOptions) { o.env = env }
}

func withRateLimit(perSecond int) func(*testOptions) {
	return func(o *testOptions) { o.rateLimit = perSecond }
}

func withLogger(l *slog.Logger) func(*testOptions) {
	return func(o *testOptions) { o.logger = l }
}

// serveApiAndRetrieveEndpoint runs the full handler chain in a test server and
// returns the response with its decoded body.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, map[string]interface{}) {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body, logging.Discard(), "http_response_body")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded), "body: %s", body)
	return resp, decoded
}

func decodeEnvelope(t *testing.T, body []byte) models.ResponseModel {
	t.Helper()
	var response models.ResponseModel
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}
