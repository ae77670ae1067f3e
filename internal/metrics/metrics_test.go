package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"walletd/internal/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := New()

	before := testutil.ToFloat64(operationResults.WithLabelValues("deposit", "applied"))
	c.RecordOperationResult("deposit", "applied")
	assert.Equal(t, before+1, testutil.ToFloat64(operationResults.WithLabelValues("deposit", "applied")))

	hits := testutil.ToFloat64(cacheRequests.WithLabelValues("wallet", "hit"))
	c.RecordCacheHit("wallet")
	c.RecordCacheMiss("wallet")
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheRequests.WithLabelValues("wallet", "hit")))

	volume := testutil.ToFloat64(transactionVolume.WithLabelValues("transfer"))
	c.RecordTransaction("transfer", 12.5)
	assert.InDelta(t, volume+12.5, testutil.ToFloat64(transactionVolume.WithLabelValues("transfer")), 0.0001)

	c.RecordOperationDuration("deposit", 20*time.Millisecond)
	c.RecordError("deposit", "store")
	c.RecordJob("withdraw", queue.StatusCompleted)
}

func TestCollector_SetQueueStats(t *testing.T) {
	New().SetQueueStats(&queue.Stats{Ready: 3, Processing: 1, Delayed: 2, Dead: 0})

	assert.Equal(t, 3.0, testutil.ToFloat64(queueJobs.WithLabelValues("ready")))
	assert.Equal(t, 2.0, testutil.ToFloat64(queueJobs.WithLabelValues("delayed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(queueJobs.WithLabelValues("dead")))
}

func TestHandler(t *testing.T) {
	New().RecordOperationResult("create_wallet", "applied")

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "walletd_operation_results_total")
}
