// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/airquality/sen5x"
)

var (
	listenAddr     string
	serveInterval  time.Duration
	backupInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Export readings as Prometheus metrics",
	Long: `Measure continuously and expose the readings on /metrics.

Channels the device reports as unknown are removed from the output instead of
being exported as 0. With --state-dir, the VOC algorithm state is saved every
--backup-int and on exit.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen-address", ":8080", "The address to listen on for HTTP requests")
	serveCmd.Flags().DurationVar(&serveInterval, "read-int", 10*time.Second, "Time interval between sensor reads")
	serveCmd.Flags().DurationVar(&backupInterval, "backup-int", time.Hour, "Time interval between VOC algorithm state backups")
	rootCmd.AddCommand(serveCmd)
}

// metrics are the gauges exported to Prometheus, labelled by serial number.
type metrics struct {
	pm1, pm25, pm4, pm10 *prometheus.GaugeVec
	humidity             *prometheus.GaugeVec
	temperature          *prometheus.GaugeVec
	voc, nox             *prometheus.GaugeVec
	fault                *prometheus.GaugeVec
	readErrors           *prometheus.CounterVec
}

func newGauge(name string, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		append([]string{"serial_number"}, labels...),
	)
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		pm1:         newGauge("air_pm1_0", "PM1.0 mass concentration (units: µg/m3)"),
		pm25:        newGauge("air_pm2_5", "PM2.5 mass concentration (units: µg/m3)"),
		pm4:         newGauge("air_pm4_0", "PM4.0 mass concentration (units: µg/m3)"),
		pm10:        newGauge("air_pm10_0", "PM10 mass concentration (units: µg/m3)"),
		humidity:    newGauge("air_humidity", "Humidity (units: % of relative Humidity)"),
		temperature: newGauge("air_temperature", "Air Temperature (units: degrees Celsius)"),
		voc:         newGauge("air_voc_index", "VOC index (1..500, 100 is the learned average)"),
		nox:         newGauge("air_nox_index", "NOx index (1..500, 1 is the learned average)"),
		fault:       newGauge("air_sensor_fault", "1 when the device reports the fault", "fault"),
		readErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "air_sensor_read_errors_total",
			Help: "Failed sensor reads",
		}, []string{"serial_number"}),
	}
	reg.MustRegister(m.pm1, m.pm25, m.pm4, m.pm10, m.humidity, m.temperature, m.voc, m.nox, m.fault, m.readErrors)
	return m
}

func setGauge(g *prometheus.GaugeVec, sn string, v sen5x.Value) {
	if !v.Valid {
		g.DeleteLabelValues(sn)
		return
	}
	g.WithLabelValues(sn).Set(v.V)
}

func (m *metrics) update(sn string, r *sen5x.Reading, s sen5x.Status) {
	setGauge(m.pm1, sn, r.PM1_0)
	setGauge(m.pm25, sn, r.PM2_5)
	setGauge(m.pm4, sn, r.PM4_0)
	setGauge(m.pm10, sn, r.PM10_0)
	setGauge(m.humidity, sn, r.Humidity)
	setGauge(m.temperature, sn, r.Temperature)
	setGauge(m.voc, sn, r.VOCIndex)
	setGauge(m.nox, sn, r.NOxIndex)
	for _, f := range []sen5x.Fault{sen5x.FaultFanSpeed, sen5x.FaultGasSensor, sen5x.FaultRHT, sen5x.FaultLaser, sen5x.FaultFanFail} {
		m.fault.WithLabelValues(sn, f.String()).Set(0)
	}
	for _, f := range s.Faults() {
		m.fault.WithLabelValues(sn, f.String()).Set(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector())
	m := newMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		// Opt into OpenMetrics to support exemplars.
		EnableOpenMetrics: true,
	}))
	srv := &http.Server{Addr: listenAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	log.Infof("serving metrics on %s", listenAddr)

	return withSession(func(d *sen5x.Dev) error {
		sn, err := d.SerialNumber()
		if err != nil {
			return err
		}
		log.Infof("exporting %s", sn)
		defer backup(d)
		lastBackup := time.Now()
		for {
			r, err := waitReading(cmd.Context(), d, serveInterval, d.MeasuredValuesRaw)
			if err != nil {
				if cmd.Context().Err() != nil {
					return nil
				}
				m.readErrors.WithLabelValues(sn).Inc()
				log.Errorf("failed to read from sensor (serialNr %s): %s", sn, err)
				continue
			}
			s, err := d.Status()
			if err != nil {
				m.readErrors.WithLabelValues(sn).Inc()
				log.Errorf("failed to read status (serialNr %s): %s", sn, err)
				continue
			}
			if f, ok := s.Fault(); ok {
				log.Warnf("sensor %s reports %s", sn, f)
			}
			log.Debugf("Received: %s", r.String())
			m.update(sn, &r, s)

			if time.Since(lastBackup) >= backupInterval {
				backup(d)
				lastBackup = time.Now()
			}
		}
	})
}

func backup(d *sen5x.Dev) {
	err := d.BackupVOCAlgorithmState()
	switch {
	case errors.Is(err, sen5x.ErrNoStore):
	case err != nil:
		log.Errorf("failed to save voc algorithm state: %s", err)
	default:
		log.Debug("saved voc algorithm state")
	}
}
