package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_TransitionsCounted(t *testing.T) {
	m := New()
	m.Transitions.WithLabelValues("unmark", "present").Inc()
	m.Transitions.WithLabelValues("unmark", "present").Inc()

	if got := testutil.ToFloat64(m.Transitions.WithLabelValues("unmark", "present")); got != 2 {
		t.Errorf("期望计数=2，实际=%v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RosterLoads.WithLabelValues("loaded").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `rollcall_roster_loads_total{status="loaded"} 1`) {
		t.Error("输出中缺少 roster_loads 指标")
	}
}

func TestNew_Independent(t *testing.T) {
	// 独立 Registry，重复创建不应 panic
	_ = New()
	_ = New()
}
