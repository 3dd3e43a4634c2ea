package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/doclens/doclens/internal/loader"
	"github.com/doclens/doclens/internal/pipeline"
	"github.com/doclens/doclens/internal/provider"
	"github.com/doclens/doclens/internal/refine"
	"github.com/doclens/doclens/internal/score"
	"github.com/doclens/doclens/internal/tasks"
	"github.com/doclens/doclens/internal/transport"
	"github.com/doclens/doclens/worker"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const (
	ProgramName   = "DocLens"
	Version       = "v0.0.0"
	RepositoryUrl = "github.com/doclens/doclens"
)

type runCmd struct {
	Input  string `arg:"positional,required" help:"path to the input collection JSON"`
	Output string `arg:"--output,-o" help:"write the result JSON to a file instead of stdout"`
}

type workerCmd struct{}

type queueCmd struct {
	Input string `arg:"positional,required" help:"path to the input collection JSON"`
	User  string `arg:"--user,-u" help:"user identifier recorded on the request trace"`
	Wait  bool   `arg:"--wait,-w" help:"block until the worker publishes the result"`
}

type statusCmd struct {
	TaskID string `arg:"positional,required" help:"task ID returned by queue"`
}

type args struct {
	Run    *runCmd    `arg:"subcommand:run" help:"analyze a document collection"`
	Worker *workerCmd `arg:"subcommand:work" help:"start the DocLens worker"`
	Queue  *queueCmd  `arg:"subcommand:queue" help:"enqueue a collection for a running worker"`
	Status *statusCmd `arg:"subcommand:status" help:"show the trace of a queued task"`

	Config string `arg:"--config,-c" default:"doclens.yaml" help:"path to the config file"`
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", ProgramName, Version)
}

func (args) Epilogue() string {
	return fmt.Sprintf("For more information visit %s", RepositoryUrl)
}

func main() {
	var args args

	p, err := arg.NewParser(arg.Config{Program: strings.ToLower(ProgramName)}, &args)
	if err != nil {
		log.Fatalf("there was an error in the definition of the Go struct: %v", err)
	}
	p.MustParse(os.Args[1:])

	if p.Subcommand() == nil {
		p.WriteUsage(os.Stdout)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using ambient environment")
	}

	conf, err := ReadConfig(args.Config)
	if err != nil {
		log.Fatalf("failed to read config %q: %v", args.Config, err)
	}

	switch p.Subcommand().(type) {
	case *runCmd:
		err = runAnalysis(args.Run, conf)
	case *workerCmd:
		err = startWorker(conf)
	case *queueCmd:
		err = queueAnalysis(args.Queue, conf)
	case *statusCmd:
		err = taskStatus(args.Status, conf)
	default:
		p.FailSubcommand("unrecognized command", p.SubcommandNames()...)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func runAnalysis(cmd *runCmd, conf *config) error {
	req, err := loader.Load(cmd.Input)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	pipe := buildPipeline(conf)

	result, err := pipe.Process(context.Background(), *req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if cmd.Output == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(cmd.Output, out, 0644)
}

func startWorker(conf *config) error {
	pipe := buildPipeline(conf)

	w := worker.New(
		pipe,
		worker.WithRedisAddr(conf.Transport.Addr),
		worker.WithRedisUsername(conf.Transport.Username),
		worker.WithRedisPassword(conf.Transport.Password),
		worker.WithRedisDB(conf.Transport.DB),
		worker.WithConcurrency(conf.Worker.Workers),
	)
	return w.Start()
}

// queueAnalysis hands the collection to a running worker over asynq and,
// with --wait, blocks on the result stream until the worker publishes.
func queueAnalysis(cmd *queueCmd, conf *config) error {
	req, err := loader.Load(cmd.Input)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	task, err := tasks.NewAnalyzeTask(*req, cmd.User)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     conf.Transport.Addr,
		Username: conf.Transport.Username,
		Password: conf.Transport.Password,
		DB:       conf.Transport.DB,
	})
	defer client.Close()

	info, err := client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	slog.Info("task enqueued", "id", info.ID, "queue", info.Queue)

	if !cmd.Wait {
		fmt.Println(info.ID)
		return nil
	}

	rdb := redisClient(conf)
	defer rdb.Close()

	payload, err := transport.AwaitResult(context.Background(), transport.NewRedisTransport(rdb), info.ID)
	if err != nil {
		return fmt.Errorf("failed to receive result: %w", err)
	}
	if payload.Status == transport.StatusErr {
		return fmt.Errorf("analysis failed: %s", payload.Error)
	}

	out, err := json.MarshalIndent(payload.Result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func taskStatus(cmd *statusCmd, conf *config) error {
	rdb := redisClient(conf)
	defer rdb.Close()

	trace, err := transport.NewRedisTransport(rdb).GetTrace(context.Background(), cmd.TaskID)
	if err != nil {
		return err
	}

	fmt.Printf("task:      %s\n", trace.ID)
	fmt.Printf("status:    %s\n", transport.TraceStatus(trace.Status))
	fmt.Printf("persona:   %s\n", trace.Persona)
	fmt.Printf("job:       %s\n", trace.Job)
	if trace.User != "" {
		fmt.Printf("user:      %s\n", trace.User)
	}
	fmt.Printf("started:   %s\n", time.Unix(0, trace.StartedAt).Format(time.RFC3339))
	if trace.CompletedAt > 0 {
		fmt.Printf("completed: %s\n", time.Unix(0, trace.CompletedAt).Format(time.RFC3339))
	}
	return nil
}

func redisClient(conf *config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Transport.Addr,
		Username: conf.Transport.Username,
		Password: conf.Transport.Password,
		DB:       conf.Transport.DB,
	})
}

// buildPipeline assembles a pipeline from the configured providers.
// Provider failures are not fatal: the pipeline degrades to
// extraction-order ranking when no scorer can be built.
func buildPipeline(conf *config) *pipeline.Pipeline {
	opts := make([]pipeline.PipelineOption, 0, 3)

	if scorer := buildScorer(conf); scorer != nil {
		opts = append(opts, pipeline.WithScorer(scorer))
	}

	refineOpts := make([]refine.RefinerOption, 0, 1)
	if conf.Providers.Refiner != "" {
		rt, err := provider.ParseRefinerType(conf.Providers.Refiner)
		if err != nil {
			slog.Warn("unknown refiner, paragraphs will be kept verbatim", "name", conf.Providers.Refiner)
		} else if gen, err := provider.NewRefiner(rt); err != nil {
			slog.Warn("failed to create refiner, paragraphs will be kept verbatim", "name", conf.Providers.Refiner, "err", err)
		} else {
			refineOpts = append(refineOpts, refine.WithGenerator(gen))
		}
	}
	opts = append(opts, pipeline.WithRefiner(refine.New(refineOpts...)))

	if conf.Scoring.SectionLimit > 0 {
		opts = append(opts, pipeline.WithLimit(conf.Scoring.SectionLimit))
	}

	return pipeline.New(opts...)
}

func buildScorer(conf *config) *score.Scorer {
	et, err := provider.ParseEmbedderType(conf.Providers.Embedder)
	if err != nil {
		slog.Warn("unknown embedder, ranking will degrade to extraction order", "name", conf.Providers.Embedder)
		return nil
	}
	embedder, err := provider.NewEmbedder(et)
	if err != nil {
		slog.Warn("failed to create embedder, ranking will degrade to extraction order", "name", conf.Providers.Embedder, "err", err)
		return nil
	}

	scoreOpts := []score.ScorerOption{
		score.WithWeights(conf.Scoring.Weights),
	}
	if conf.Scoring.Concurrency > 0 {
		scoreOpts = append(scoreOpts, score.WithConcurrency(conf.Scoring.Concurrency))
	}
	if conf.Scoring.JudgeTimeoutSeconds > 0 {
		scoreOpts = append(scoreOpts, score.WithJudgeTimeout(time.Duration(conf.Scoring.JudgeTimeoutSeconds)*time.Second))
	}

	if conf.Providers.Judge != "" {
		jt, err := provider.ParseJudgeType(conf.Providers.Judge)
		if err != nil {
			slog.Warn("unknown judge, falling back to embedding-only scoring", "name", conf.Providers.Judge)
		} else if judge, err := provider.NewJudge(jt); err != nil {
			slog.Warn("failed to create judge, falling back to embedding-only scoring", "name", conf.Providers.Judge, "err", err)
		} else {
			scoreOpts = append(scoreOpts, score.WithJudge(judge))
		}
	}

	return score.New(embedder, scoreOpts...)
}
