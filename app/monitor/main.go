// Command monitor опрашивает /stats сервера usersgrid, хранит последние
// снимки, выгружает каждый в JSON и рисует по ним графики.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/stats"
)

func collect(ctx context.Context, history *stats.History, url, exportDir string, interval time.Duration) {
	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snapshot, err := stats.Fetch(ctx, client, url)
		if err != nil {
			logrus.WithError(err).Warn("Fetching stats")
			continue
		}

		name, err := stats.SaveSnapshot(*snapshot, exportDir)
		if err != nil {
			logrus.WithError(err).Warn("Exporting snapshot")
		} else {
			logrus.WithField("file", name).Info("Snapshot exported")
		}

		logrus.WithFields(logrus.Fields{
			"rows":      snapshot.Rows,
			"inserts":   snapshot.Inserts,
			"failures":  snapshot.InsertFailures,
			"load_ms":   snapshot.AvgLoadTimeMs,
			"insert_ms": snapshot.AvgInsertTimeMs,
		}).Info("Stats")

		history.Add(*snapshot)
	}
}

func main() {
	var (
		url       string
		exportDir string
		addr      string
		interval  time.Duration
	)

	cli := kingpin.New("monitor", "Chart the stats of a usersgrid server.")
	cli.Flag("url", "Base URL of the usersgrid server.").
		Default("http://localhost:8080").StringVar(&url)
	cli.Flag("export-dir", "Directory for exported snapshots.").Default("export").StringVar(&exportDir)
	cli.Flag("addr", "Listen address for the charts.").Default(":8190").StringVar(&addr)
	cli.Flag("interval", "Polling interval.").Default("10s").DurationVar(&interval)
	kingpin.MustParse(cli.Parse(os.Args[1:]))

	if err := os.MkdirAll(exportDir, 0755); err != nil {
		logrus.Fatalf("creating export directory: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	history := &stats.History{}
	go collect(ctx, history, url, exportDir, interval)

	mux := http.NewServeMux()
	mux.HandleFunc("/chart", func(w http.ResponseWriter, r *http.Request) {
		err := stats.RenderChart(w, history.All())
		if errors.Is(err, stats.ErrNoSnapshots) {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>
<head>
	<meta http-equiv="refresh" content="15">
	<title>usersgrid stats</title>
</head>
<body>
	<h1>usersgrid stats</h1>
	<p>See <a href="/chart">/chart</a>.</p>
</body>
</html>`)
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	logrus.WithField("addr", addr).Info("Chart server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Fatalf("server failed: %v", err)
	}
}
