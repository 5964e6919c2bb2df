package metrics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type manager struct {
	namespace string
	system    string
	registry  *prometheus.Registry
}

const defaultKey = "default"

var (
	defaultManager = map[string]*manager{
		defaultKey: {
			namespace: defaultKey,
			system:    defaultKey,
			registry:  prometheus.NewRegistry(),
		},
	}
	managerLock sync.RWMutex
)

func RegisterGoMetrics(r prometheus.Registerer) {
	r.Register(collectors.NewGoCollector())
}

// SetupMetricsManager replaces the default registry. Collectors created afterwards register against it.
func SetupMetricsManager(ns, system string, registry *prometheus.Registry) {
	managerLock.Lock()
	defaultManager[defaultKey] = &manager{
		namespace: ns,
		system:    system,
		registry:  registry,
	}
	managerLock.Unlock()
	RegisterGoMetrics(registry)
}

func MustGetDefaultManager() (string, string, prometheus.Registerer) {
	managerLock.RLock()
	defer managerLock.RUnlock()
	m := defaultManager[defaultKey]
	return m.namespace, m.system, m.registry
}

func defaultRegistry() *prometheus.Registry {
	managerLock.RLock()
	defer managerLock.RUnlock()
	return defaultManager[defaultKey].registry
}

func NewCounterVec(name string, labels []string) *prometheus.CounterVec {
	ns, system, registerer := MustGetDefaultManager()

	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: FmtFixer(ns),
			Subsystem: FmtFixer(system),
			Name:      FmtFixer(name),
			Help:      fmt.Sprintf("%s count of /%s/%s", name, ns, system),
		},
		labels,
	)
	vec.WithLabelValues(make([]string, len(labels))...).Add(0)

	return register(registerer, vec)
}

func NewHistogramVec(name string, labels []string) *prometheus.HistogramVec {
	ns, system, registerer := MustGetDefaultManager()
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: FmtFixer(ns),
			Subsystem: FmtFixer(system),
			Name:      FmtFixer(name),
			Help:      fmt.Sprintf("%s duration of /%s/%s", name, ns, system),
		},
		labels,
	)

	return register(registerer, vec)
}

func NewGaugeVec(name string, labels []string) *prometheus.GaugeVec {
	ns, system, registerer := MustGetDefaultManager()

	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: FmtFixer(ns),
			Subsystem: FmtFixer(system),
			Name:      FmtFixer(name),
			Help:      fmt.Sprintf("%s gauge of /%s/%s", name, ns, system),
		},
		labels,
	)
	vec.WithLabelValues(make([]string, len(labels))...).Add(0)

	return register(registerer, vec)
}

// register returns the collector already known to r when an identical one was registered before.
func register[T prometheus.Collector](r prometheus.Registerer, c T) T {
	if err := r.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func DefaultExportHandler() gin.HandlerFunc {
	registry := defaultRegistry()
	h := promhttp.InstrumentMetricHandler(
		registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func FmtFixer(in string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(in)
}
