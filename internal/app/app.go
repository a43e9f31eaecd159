package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"facegreeter/internal/config"
	"facegreeter/internal/logger"
	"facegreeter/internal/repository/sqlite"
	"facegreeter/internal/route"
	"facegreeter/internal/service/ai"
	"facegreeter/internal/service/capture"
	"facegreeter/internal/service/gallery"
	"facegreeter/internal/service/greeting"
	"facegreeter/internal/service/publish"
	"facegreeter/internal/service/storage"
	"facegreeter/internal/service/stream"
	"facegreeter/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger *logger.Logger

	db            *sqlite.DB
	faces         *ai.FaceService
	gallery       *gallery.Gallery
	bufferService *storage.BufferService
	hubService    *websocket.HubService
	mqtt          *publish.MQTTPublisher
	tts           greeting.Synthesizer
	server        *http.Server
}

// NewApp builds every service and the HTTP server. Optional integrations (chat, speech,
// MQTT, remote publishing) that fail to start are logged and left out.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{config: cfg, logger: log}

	recognizer, err := ai.NewRecognizer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s recognizer: %w", cfg.DetectorBackend, err)
	}
	a.faces = ai.NewFaceService(recognizer, log)

	a.gallery = gallery.New(cfg.GalleryDirectory, a.faces, log)
	if _, err := a.gallery.Scan(); err != nil {
		a.Close()
		return nil, err
	}

	a.db, err = sqlite.New(cfg.DatabasePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	visits := sqlite.NewVisitRepository(a.db)

	a.bufferService = storage.NewBufferService(cfg, log, visits)
	a.hubService = websocket.NewHubService(log)
	audio := publish.NewAudioFilePublisher(cfg.AudioPath)

	publishers := publish.NewMulti(log,
		publish.NewVisitRecorder(visits, a.bufferService),
		publish.NewHubPublisher(a.hubService),
		audio,
	)
	if cfg.Publish.URL != "" {
		publishers.Add(publish.NewHTTPPublisher(cfg.Publish.URL, cfg.ExternalTimeout))
	}
	if cfg.MQTT.Broker != "" {
		a.mqtt = publish.NewMQTTPublisher(cfg.MQTT, log)
		switch err := a.mqtt.Connect(ctx); {
		case err == nil:
			publishers.Add(a.mqtt)
		case errors.Is(err, publish.ErrConnectPending):
			log.Warning("%v, retrying in the background", err)
			publishers.Add(a.mqtt)
		default:
			log.Warning("MQTT disabled: %v", err)
			a.mqtt = nil
		}
	}
	log.Info("Greeting publishers: %v", publishers.Names())

	greeter, err := a.newGreeter(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := capture.NewRegistry(cfg, capture.Open, log)
	factory := stream.NewFactory(registry, a.gallery, a.faces, greeter, publishers, cfg, log)

	router := route.SetupRoutes(route.Deps{
		Config:      cfg,
		Logger:      log,
		Faces:       a.faces,
		Gallery:     a.gallery,
		Registry:    registry,
		Provisioner: capture.NewProvisioner(cfg.Publish.ProvisionURL, cfg.ExternalTimeout),
		Greeter:     greeter,
		Factory:     factory,
		Hub:         a.hubService,
		Audio:       audio,
		Visits:      visits,
	})

	// No WriteTimeout: /video_feed responses are unbounded.
	a.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

func (a *App) newGreeter(ctx context.Context) (*greeting.Greeter, error) {
	prompts, err := greeting.LoadPrompts()
	if err != nil {
		return nil, err
	}

	chat, err := greeting.NewChatProvider(ctx, a.config.Chat)
	if err != nil {
		a.logger.Warning("Chat disabled, using fallback greetings: %v", err)
		chat = nil
	}
	if chat == nil {
		a.logger.Info("No chat provider configured, greetings use fallback text")
	} else {
		a.logger.Info("Chat provider: %s", chat.Name())
	}

	var tts greeting.Synthesizer
	if a.config.TTS.Enabled {
		googleTTS, err := greeting.NewGoogleTTS(ctx, a.config.TTS)
		if err != nil {
			a.logger.Warning("Speech synthesis disabled: %v", err)
		} else {
			tts = googleTTS
			a.tts = googleTTS
		}
	}

	return greeting.NewGreeter(chat, tts, prompts, a.config.ExternalTimeout, a.logger), nil
}

// Run serves HTTP until ctx is cancelled. ready is called once the listener is bound.
func (a *App) Run(ctx context.Context, ready func()) error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.server.Addr, err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancelling request contexts ends open /video_feed streams so Shutdown can finish.
	reqCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()
	a.server.BaseContext = func(net.Listener) context.Context { return reqCtx }

	// Start background services
	bufferDone := make(chan struct{})
	go func() {
		a.bufferService.Run(bgCtx)
		close(bufferDone)
	}()
	go a.hubService.Run(bgCtx)

	a.logger.Info("Face greeter listening on http://%s", listener.Addr())
	a.logger.Info("Recognizer: %s, gallery: %s (%d faces)", a.faces.Backend(), a.config.GalleryDirectory, a.gallery.Len())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Serve(listener)
	}()
	if ready != nil {
		ready()
	}

	select {
	case err := <-serveErr:
		cancel()
		<-bufferDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down...")
	cancelRequests()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	err = a.server.Shutdown(shutdownCtx)

	// Pending snapshots are flushed after the last greeting has been recorded.
	cancel()
	<-bufferDone
	return err
}

// Close releases the recognizer, database and external clients.
func (a *App) Close() error {
	var errs []error
	if a.mqtt != nil {
		a.mqtt.Disconnect()
	}
	if a.tts != nil {
		errs = append(errs, a.tts.Close())
	}
	if a.faces != nil {
		errs = append(errs, a.faces.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
