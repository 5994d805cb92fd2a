package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fx147/pod-label-controller/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func testPods() []corev1.Pod {
	return []corev1.Pod{
		{
			ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "p1"},
			Status:     corev1.PodStatus{Phase: corev1.PodRunning},
		},
		{
			ObjectMeta: metav1.ObjectMeta{Namespace: "ops", Name: "p2", Labels: map[string]string{"learning": "rust", "tier": "x"}},
			Status:     corev1.PodStatus{Phase: corev1.PodPending},
		},
		{
			ObjectMeta: metav1.ObjectMeta{Namespace: "ops", Name: "p3", Labels: map[string]string{"learning": "go"}},
		},
	}
}

func TestPrintPodsTable(t *testing.T) {
	var buf bytes.Buffer
	PrintPodsTable(&buf, testPods(), config.NewDefaultOptions())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"NAMESPACE", "NAME", "PHASE", "learning", "AGE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"default", "p1", "Running", "<missing>", "<unknown>"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"ops", "p2", "Pending", "ok", "<unknown>"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"ops", "p3", `"go"`, "<unknown>"}, strings.Fields(lines[3]))
}

func TestFilterUnlabeled(t *testing.T) {
	got := FilterUnlabeled(testPods(), config.NewDefaultOptions())

	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"p1", "p3"}, names)
}
