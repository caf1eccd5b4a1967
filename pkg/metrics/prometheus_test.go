package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCountsByOutcome(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordCollaboratorCall("search", nil)
	r.RecordCollaboratorCall("search", errors.New("boom"))
	r.RecordCollaboratorCall("search", errors.New("boom"))
	r.RecordPlan("High Risk", "planned")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.collaboratorCalls.WithLabelValues("search", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.collaboratorCalls.WithLabelValues("search", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.plans.WithLabelValues("High Risk", "planned")))
}
