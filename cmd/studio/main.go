package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/dispatch"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/config"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/ffmpeg"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/memory"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/metrics"
	miniostorage "github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/minio"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/onnx"
	pgstorage "github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/postgres"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/sdapi"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/tracing"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/model"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/usecase"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	slotTextToVideo = "text-to-video"
	slotClassifier  = "classifier"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting ai studio core")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if no collector is listening)
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(ctx)
		}
	}

	// Operation history: postgres when configured, in-memory otherwise.
	var repo port.OperationRepository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		fatalOnErr(err, "connect to postgres")
		defer pool.Close()

		pgRepo := pgstorage.NewOperationRepository(pool)
		fatalOnErr(pgRepo.EnsureSchema(ctx), "ensure history schema")
		repo = pgRepo
	} else {
		repo = memory.NewOperationRepository()
	}

	// Artifact archive (optional)
	var archive port.ArtifactArchive
	if cfg.MinIOEndpoint != "" {
		arc, err := miniostorage.NewArchive(miniostorage.ArchiveConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.MinIOBucket,
		})
		fatalOnErr(err, "create artifact archive")
		fatalOnErr(arc.EnsureBucket(ctx), "ensure artifact bucket")
		archive = arc
	}

	// Pipelines and adapters
	t2iPipeline := sdapi.NewClient(cfg.SDAPIURL, log)
	encoder := ffmpeg.NewEncoder(log)
	textToVideo := model.NewTextToVideo(t2iPipeline, encoder, model.TextToVideoConfig{
		VideoPath:      cfg.OutputVideo,
		PreviewPath:    cfg.OutputPreview,
		InferenceSteps: cfg.SDSteps,
		FrameCount:     cfg.VideoFrames,
		FPS:            cfg.VideoFPS,
		Guidance:       cfg.SDGuidance,
		ImageSize:      cfg.SDImageSize,
	}, log)

	clsPipeline := onnx.NewPipeline(cfg.ONNXModelPath, cfg.ONNXMetadataPath, log)
	defer clsPipeline.Close()
	classifier := model.NewClassifier(clsPipeline, log)
	classifier.SetTopK(cfg.ClassifierTopK)

	// Dispatcher
	runner := usecase.NewRunner(repo, archive, log)
	dispatcher := dispatch.New(runner, cfg.EventBuffer, log)
	dispatcher.Register(slotTextToVideo, textToVideo)
	dispatcher.Register(slotClassifier, classifier)

	// Diagnostics server (optional)
	var shutdownMetrics func()
	if cfg.MetricsPort > 0 {
		srv := metrics.StartServer(ctx, cfg.MetricsPort, log)
		shutdownMetrics = func() {
			shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			srv.Shutdown(shutdownCtx)
		}
	}

	// The presentation loop owns every event: progress, results and errors
	// are printed here, never from a worker goroutine.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range dispatcher.Events() {
			printEvent(ev)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		os.Stdin.Close()
	}()

	fmt.Println("ai studio core ready")
	fmt.Println("commands: load <slot> | run <slot> <input> | info <slot> | cancel <slot> | slots | quit")

	runCommandLoop(ctx, dispatcher)

	cancel()
	dispatcher.Close()
	wg.Wait()
	if shutdownMetrics != nil {
		shutdownMetrics()
	}
	log.Info("ai studio core stopped")
}

func runCommandLoop(ctx context.Context, d *dispatch.Dispatcher) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 3)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit":
			return

		case "slots":
			slots := d.Slots()
			sort.Strings(slots)
			for _, slot := range slots {
				fmt.Printf("  %s\n", slot)
			}

		case "load":
			if len(parts) < 2 {
				fmt.Println("usage: load <slot>")
				continue
			}
			if _, err := d.Load(ctx, parts[1]); err != nil {
				fmt.Printf("error: %v\n", err)
			}

		case "run":
			if len(parts) < 3 {
				fmt.Println("usage: run <slot> <prompt or image path>")
				continue
			}
			if _, err := d.Predict(ctx, parts[1], parts[2]); err != nil {
				fmt.Printf("error: %v\n", err)
			}

		case "cancel":
			if len(parts) < 2 {
				fmt.Println("usage: cancel <slot>")
				continue
			}
			if !d.Cancel(parts[1]) {
				fmt.Println("nothing running for that slot")
			}

		case "info":
			if len(parts) < 2 {
				fmt.Println("usage: info <slot>")
				continue
			}
			m, ok := d.Model(parts[1])
			if !ok {
				fmt.Println("unknown slot")
				continue
			}
			info := m.Info()
			keys := make([]string, 0, len(info))
			for k := range info {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %-16s %s\n", k, info[k])
			}

		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func printEvent(ev entity.ProgressEvent) {
	switch {
	case ev.Terminal && ev.Err != nil:
		fmt.Printf("[%s] FAILED: %v\n", ev.Slot, ev.Err)
	case ev.Terminal:
		fmt.Printf("[%s] 100%% done\n", ev.Slot)
		printResult(ev.Result)
	default:
		fmt.Printf("[%s] %3d%% %s\n", ev.Slot, ev.Percentage, ev.Message)
	}
}

func printResult(result any) {
	switch r := result.(type) {
	case entity.ClassificationResult:
		for _, p := range r {
			fmt.Printf("  %d. %-24s %s\n", p.Rank, p.Label, p.Confidence)
		}
	case entity.VideoResult:
		fmt.Printf("  %s\n", r.Message)
		fmt.Printf("  file: %s (%d frames @ %d fps, %s, %s)\n",
			r.File, r.Frames, r.FPS, r.DurationLabel(), r.Resolution)
		fmt.Printf("  preview: %s\n", r.Preview)
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
