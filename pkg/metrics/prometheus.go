package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fsbridge/pkg/types"
)

// PrometheusExporter handles Prometheus metrics export
type PrometheusExporter struct {
	now func() time.Time
}

// NewPrometheusExporter creates a new Prometheus exporter
func NewPrometheusExporter() *PrometheusExporter {
	return &PrometheusExporter{now: time.Now}
}

type opKey struct {
	op     types.Op
	result string
}

// ExportMetrics generates Prometheus format metrics from batch results
func (p *PrometheusExporter) ExportMetrics(results []types.OpResult) string {
	var metrics strings.Builder

	timestamp := p.now().UnixMilli()

	counts := make(map[opKey]int)
	bytesByOp := make(map[types.Op]int)
	durByOp := make(map[types.Op]time.Duration)
	failed := 0

	for _, r := range results {
		if r.Failed() {
			failed++
		}
		counts[opKey{r.Op, r.Outcome()}]++
		bytesByOp[r.Op] += r.Bytes
		durByOp[r.Op] += r.Duration
	}

	keys := make([]opKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].op != keys[j].op {
			return keys[i].op < keys[j].op
		}
		return keys[i].result < keys[j].result
	})

	metrics.WriteString("# HELP fsbridge_op_total Total number of bridge operations by op and result\n")
	metrics.WriteString("# TYPE fsbridge_op_total counter\n")
	for _, k := range keys {
		metrics.WriteString(fmt.Sprintf("fsbridge_op_total{op=\"%s\",result=\"%s\"} %d %d\n",
			escapeLabel(string(k.op)), k.result, counts[k], timestamp))
	}

	ops := make([]types.Op, 0, len(bytesByOp))
	for op := range bytesByOp {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })

	metrics.WriteString("\n# HELP fsbridge_op_bytes_total Bytes read or written by op\n")
	metrics.WriteString("# TYPE fsbridge_op_bytes_total counter\n")
	for _, op := range ops {
		metrics.WriteString(fmt.Sprintf("fsbridge_op_bytes_total{op=\"%s\"} %d %d\n",
			escapeLabel(string(op)), bytesByOp[op], timestamp))
	}

	metrics.WriteString("\n# HELP fsbridge_op_duration_seconds_total Time spent in each op\n")
	metrics.WriteString("# TYPE fsbridge_op_duration_seconds_total counter\n")
	for _, op := range ops {
		metrics.WriteString(fmt.Sprintf("fsbridge_op_duration_seconds_total{op=\"%s\"} %g %d\n",
			escapeLabel(string(op)), durByOp[op].Seconds(), timestamp))
	}

	metrics.WriteString("\n# HELP fsbridge_batch_steps Number of steps in the batch\n")
	metrics.WriteString("# TYPE fsbridge_batch_steps gauge\n")
	metrics.WriteString(fmt.Sprintf("fsbridge_batch_steps %d %d\n", len(results), timestamp))

	metrics.WriteString("\n# HELP fsbridge_batch_failed_steps Number of failed steps in the batch\n")
	metrics.WriteString("# TYPE fsbridge_batch_failed_steps gauge\n")
	metrics.WriteString(fmt.Sprintf("fsbridge_batch_failed_steps %d %d\n", failed, timestamp))

	return metrics.String()
}

// escapeLabel escapes Prometheus label values
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
