package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(QuestionsTotal.WithLabelValues("answered"))
	QuestionsTotal.WithLabelValues("answered").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(QuestionsTotal.WithLabelValues("answered")))

	ObserveStage("retrieve", time.Now())
	assert.GreaterOrEqual(t, testutil.CollectAndCount(StageDurationSeconds), 1)
}
