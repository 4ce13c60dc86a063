package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"usersgrid/app/internal/app"
	"usersgrid/app/internal/config"
)

func main() {
	cfg := config.Default()

	cli := kingpin.New("usersgrid", "Shows the users table and appends rows through a generated form.")
	cli.Flag("driver", "Database driver (sqlite or postgres).").
		Envar("USERSGRID_DRIVER").Default(cfg.Driver).StringVar(&cfg.Driver)
	cli.Flag("dsn", "Database connection string.").
		Envar("DATABASE_URL").Default(cfg.DSN).StringVar(&cfg.DSN)
	cli.Flag("table", "Table to show.").Default(cfg.Table).StringVar(&cfg.Table)
	cli.Flag("log-level", "Log level.").Default(cfg.LogLevel).StringVar(&cfg.LogLevel)
	cli.Flag("log-file", "Log file used while the terminal window is open.").
		Default(cfg.LogFile).StringVar(&cfg.LogFile)

	tuiCmd := cli.Command("tui", "Open the terminal window.").Default()
	tuiCmd.Flag("width", "Window width in cells.").Default(strconv.Itoa(cfg.Width)).IntVar(&cfg.Width)
	tuiCmd.Flag("height", "Window height in cells.").Default(strconv.Itoa(cfg.Height)).IntVar(&cfg.Height)

	serveCmd := cli.Command("serve", "Serve the grid and form over HTTP.")
	serveCmd.Flag("addr", "Listen address.").Default(cfg.Addr).StringVar(&cfg.Addr)

	command := kingpin.MustParse(cli.Parse(os.Args[1:]))
	if err := cfg.Validate(); err != nil {
		cli.Fatalf("%v", err)
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		logrus.Fatalf("startup failed: %v", err)
	}
	defer a.Close()

	// Ошибки запуска уходят в stderr, лог в файл только пока открыто окно.
	if command == tuiCmd.FullCommand() {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			a.Close()
			logrus.Fatalf("opening log file: %v", err)
		}
		defer f.Close()
		logrus.SetOutput(f)
	}

	switch command {
	case tuiCmd.FullCommand():
		err = a.RunTUI(cfg)
	case serveCmd.FullCommand():
		err = a.Serve(ctx, cfg)
	}
	if err != nil {
		logrus.Errorf("%v", err)
		a.Close()
		os.Exit(1)
	}
}
