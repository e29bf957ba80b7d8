// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// statsCollector exports pgxpool.Stat on every scrape.
type statsCollector struct {
	stat func() *pgxpool.Stat

	acquired *prometheus.Desc
	idle     *prometheus.Desc
	total    *prometheus.Desc
	max      *prometheus.Desc
	waits    *prometheus.Desc
}

func newStatsCollector(pool *pgxpool.Pool) *statsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("yomira_pg_pool_"+name, help, nil, nil)
	}
	return &statsCollector{
		stat:     pool.Stat,
		acquired: desc("acquired_conns", "Connections currently checked out"),
		idle:     desc("idle_conns", "Idle connections"),
		total:    desc("total_conns", "Open connections"),
		max:      desc("max_conns", "Configured connection ceiling"),
		waits:    desc("empty_acquire_total", "Acquires that had to wait for a connection"),
	}
}

func (collector *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.acquired
	ch <- collector.idle
	ch <- collector.total
	ch <- collector.max
	ch <- collector.waits
}

func (collector *statsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := collector.stat()
	ch <- prometheus.MustNewConstMetric(collector.acquired, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(collector.idle, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(collector.total, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(collector.max, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(collector.waits, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
}
