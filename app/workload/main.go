// Command workload отправляет сгенерированных пользователей на сервер usersgrid.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/workload"
)

func main() {
	var opts workload.Options

	cli := kingpin.New("workload", "Post generated users to /addRow.")
	cli.Flag("url", "Base URL of the usersgrid server.").
		Default("http://localhost:8080").StringVar(&opts.URL)
	cli.Flag("n", "Number of users to send.").Short('n').Default("100").IntVar(&opts.Count)
	cli.Flag("start", "First id to send.").Default("1000").IntVar(&opts.StartID)
	cli.Flag("delay", "Pause between requests.").Default("100ms").DurationVar(&opts.Delay)
	kingpin.MustParse(cli.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: 10 * time.Second}
	res, err := workload.Run(ctx, client, opts)
	logrus.WithFields(logrus.Fields{
		"sent":   res.Sent,
		"failed": res.Failed,
	}).Info("Loading done")
	if err != nil {
		logrus.Fatalf("workload stopped: %v", err)
	}
}
