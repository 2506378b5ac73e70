package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the save backup engine
var (
	// Backup metrics
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rogame_backups_total",
			Help: "Total number of backups created",
		},
		[]string{"game_id", "trigger"},
	)

	BackupsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rogame_backups_failed_total",
			Help: "Total number of failed backup attempts",
		},
		[]string{"game_id", "trigger"},
	)

	BackupBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rogame_backup_bytes_total",
			Help: "Total bytes written into backup archives",
		},
		[]string{"game_id"},
	)

	BackupsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rogame_backups_evicted_total",
			Help: "Archives removed by the retention policy",
		},
	)

	// Restore metrics
	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rogame_restores_total",
			Help: "Total number of restores performed",
		},
		[]string{"game_id"},
	)

	RestoresFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rogame_restores_failed_total",
			Help: "Total number of failed restore attempts",
		},
		[]string{"game_id"},
	)

	// Library scan metrics
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rogame_scan_duration_seconds",
			Help:    "Duration of full library scans",
			Buckets: prometheus.DefBuckets,
		},
	)

	GamesFound = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rogame_games_found",
			Help: "Games discovered in the last library scan",
		},
		[]string{"platform"},
	)
)
