// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/language"

	"github.com/ezrec/lmcview/animate"
	"github.com/ezrec/lmcview/config"
	"github.com/ezrec/lmcview/console"
	"github.com/ezrec/lmcview/cycle"
	"github.com/ezrec/lmcview/engine"
	"github.com/ezrec/lmcview/logs"
	"github.com/ezrec/lmcview/prefs"
	"github.com/ezrec/lmcview/run"
	"github.com/ezrec/lmcview/script"
	"github.com/ezrec/lmcview/session"
	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/translate"
	"github.com/ezrec/lmcview/tui"
)

// machine is everything both front-ends share.
type machine struct {
	cfg     config.Config
	timings config.Timings
	store   *prefs.Store
	client  *engine.Client
	mirror  *state.Mirror
	session *session.Session
	logger  *slog.Logger
}

// wire connects the execution pipeline to a front-end and surface.
func (m *machine) wire(frontend interface {
	cycle.Frontend
	session.Frontend
}, surface animate.Surface) (controller *run.Controller) {
	seq := animate.NewSequencer(surface, m.store)
	seq.Logger = m.logger
	m.timings.Apply(seq)

	m.client.Logger = m.logger
	m.session.Frontend = frontend
	m.session.Logger = m.logger

	return &run.Controller{
		Mirror: m.mirror,
		Engine: m.client,
		Processor: &cycle.Processor{
			Mirror:   m.mirror,
			Animator: seq,
			Locate:   tui.Locate,
			Frontend: frontend,
			Engine:   m.client,
			Logger:   m.logger,
		},
		Alerter: frontend,
		Logger:  m.logger,
	}
}

func runScript(ctx context.Context, m *machine, path string, logw io.Writer) (err error) {
	m.logger = logs.New(logw)

	frontend := &script.Frontend{
		Console: &console.Console{Input: os.Stdin, Output: os.Stdout},
	}

	sc := &script.Script{
		Session:    m.session,
		Controller: m.wire(frontend, &animate.Instant{}),
		Mirror:     m.mirror,
		Frontend:   frontend,
		Toggle:     m.store,
		Logger:     m.logger,
	}

	_, err = sc.Exec(ctx, path, nil)
	return
}

func runTerminal(ctx context.Context, m *machine, logw io.Writer) (err error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return
	}
	err = screen.Init()
	if err != nil {
		return
	}
	defer screen.Fini()

	app := tui.NewApp(screen)
	m.logger = logs.New(logw, logs.Status(slog.LevelWarn, app.SetStatus))

	app.Mirror = m.mirror
	app.Session = m.session
	app.Controller = m.wire(app, app.Surface)
	app.Prefs = m.store
	app.ShareBase = m.cfg.Share
	app.Logger = m.logger

	return app.Run(ctx)
}

func main() {
	var configPath string
	var server string
	var scriptPath string
	var link string
	var logPath string
	var lang string
	var verbose bool

	flag.StringVar(&configPath, "config", "", ".cue configuration file")
	flag.StringVar(&server, "server", "", "Engine URL (default from configuration)")
	flag.StringVar(&scriptPath, "script", "", ".star script to run instead of the terminal UI")
	flag.StringVar(&link, "url", "", "Share link to load the program from")
	flag.StringVar(&logPath, "log", "", "Log file (default stderr for scripts, none for the terminal UI)")
	flag.StringVar(&lang, "lang", "", "Message language tag (default from the system locale)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() > 1 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	if len(lang) != 0 {
		tag, err := language.Parse(lang)
		if err != nil {
			log.Fatalf("%v: %v", lang, err)
		}
		translate.Use(tag)
	}

	var configPaths []string
	if len(configPath) != 0 {
		configPaths = append(configPaths, configPath)
	}

	cfg, err := config.Load(configPaths...)
	if err != nil {
		log.Fatalf("%v: %v", configPath, err)
	}
	if len(server) != 0 {
		cfg.Server = server
	}

	timings, err := cfg.Animation.Timings()
	if err != nil {
		log.Fatal(err)
	}

	if verbose {
		logs.Level.Set(slog.LevelDebug)
	}

	var logw io.Writer = io.Discard
	if len(scriptPath) != 0 {
		logw = os.Stderr
	}
	if len(logPath) != 0 {
		logf, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("%v: %v", logPath, err)
		}
		defer logf.Close()
		logw = logf
	}

	prefsPath := cfg.Prefs
	if len(prefsPath) == 0 {
		prefsPath, err = prefs.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
	}
	store, err := prefs.Open(prefsPath)
	if err != nil {
		log.Fatalf("%v: %v", prefsPath, err)
	}

	mirror := state.NewMirror()
	client := engine.NewClient(cfg.Server)
	m := &machine{
		cfg:     cfg,
		timings: timings,
		store:   store,
		client:  client,
		mirror:  mirror,
		session: &session.Session{
			Mirror:    mirror,
			Assembler: client,
		},
	}

	if flag.NArg() == 1 {
		source, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			log.Fatalf("%v: %v", flag.Arg(0), err)
		}
		m.session.Source = string(source)
	}
	if len(link) != 0 {
		err = m.session.Open(link)
		if err != nil {
			log.Fatalf("%v: %v", link, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(scriptPath) != 0 {
		err = runScript(ctx, m, scriptPath, logw)
	} else {
		err = runTerminal(ctx, m, logw)
	}
	if err != nil {
		log.Fatal(err)
	}
}
