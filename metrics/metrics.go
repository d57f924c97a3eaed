// Package metrics expõe a instrumentação Prometheus da camada de gatekeeping.
//
// Os contadores são pendurados nos hooks dos middlewares (OnDecision do
// controle de admissão, WithOnResult do cache de identidade), mantendo os
// pacotes de domínio livres de dependência do Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector agrupa os vetores de métricas do serviço.
type Collector struct {
	admissions *prometheus.CounterVec
	identity   *prometheus.CounterVec
}

type collectorConfig struct {
	namespace string
	registry  prometheus.Registerer
}

// CollectorOption configura um Collector.
type CollectorOption func(*collectorConfig)

// WithNamespace troca o prefixo das métricas.
func WithNamespace(ns string) CollectorOption {
	return func(c *collectorConfig) { c.namespace = ns }
}

// WithRegistry registra as métricas no Registerer dado em vez do default.
func WithRegistry(r prometheus.Registerer) CollectorOption {
	return func(c *collectorConfig) { c.registry = r }
}

// NewCollector cria e registra os vetores.
//
// Métricas registradas:
//   - {namespace}_admission_requests_total  counter (route, decision)
//   - {namespace}_identity_cache_total      counter (result)
func NewCollector(opts ...CollectorOption) *Collector {
	cfg := &collectorConfig{
		namespace: "turbine",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, o := range opts {
		o(cfg)
	}

	admissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "admission_requests_total",
		Help:      "Admission control decisions partitioned by route and decision.",
	}, []string{"route", "decision"})

	identity := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "identity_cache_total",
		Help:      "Identity cache resolutions partitioned by result (hit/miss/invalid/error).",
	}, []string{"result"})

	cfg.registry.MustRegister(admissions, identity)

	return &Collector{admissions: admissions, identity: identity}
}

// RecordAdmission tem a assinatura do hook OnDecision do middleware ratelimit.
func (c *Collector) RecordAdmission(route string, allowed bool) {
	decision := "rejected"
	if allowed {
		decision = "admitted"
	}
	c.admissions.WithLabelValues(route, decision).Inc()
}

// RecordIdentity tem a assinatura do hook WithOnResult do cache de identidade.
func (c *Collector) RecordIdentity(result string) {
	c.identity.WithLabelValues(result).Inc()
}
