package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics prometheus collectors for note activity
// Metrics 笔记相关的 prometheus 指标
type Metrics struct {
	NotesSaved   *prometheus.CounterVec
	NotesDeleted *prometheus.CounterVec
	AITagging    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg, reusing ones already registered
// A nil reg yields unregistered collectors
// NewMetrics 在 reg 上注册指标，已注册时复用
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flownote",
			Name:      "notes_saved_total",
			Help:      "Notes created or updated, by backend.",
		}, []string{"backend", "action"}),
		NotesDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flownote",
			Name:      "notes_deleted_total",
			Help:      "Notes deleted, by backend.",
		}, []string{"backend"}),
		AITagging: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flownote",
			Name:      "ai_tagging_total",
			Help:      "AI tagging calls, by result.",
		}, []string{"result"}),
	}
	if reg == nil {
		return m
	}
	m.NotesSaved = register(reg, m.NotesSaved)
	m.NotesDeleted = register(reg, m.NotesDeleted)
	m.AITagging = register(reg, m.AITagging)
	return m
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}
