package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	documentrepo "github.com/kailas-cloud/recall/internal/repository/document"
	workeruc "github.com/kailas-cloud/recall/internal/usecase/worker"
)

func newWorkerCmd() *cobra.Command {
	var maxJobs int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the embed_document worker pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, maxJobs)
		},
	}
	cmd.Flags().IntVar(&maxJobs, "max-jobs", 0, "Concurrent jobs (overrides queue.max_jobs)")
	return cmd
}

func runWorker(ctx context.Context, maxJobs int) error {
	a, err := newApp(ctx, "worker")
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	resolver, err := a.newResolver()
	if err != nil {
		return err
	}

	if maxJobs <= 0 {
		maxJobs = cfg.Queue.MaxJobs
	}

	proc := workeruc.NewProcessor(a.colls, a.models, resolver, documentrepo.New(a.vectors))
	pool := workeruc.NewPool(a.jobs, proc, workeruc.Config{
		MaxJobs:     maxJobs,
		JobTimeout:  cfg.Queue.JobTimeout(),
		PollTimeout: cfg.Queue.PollTimeout(),
	}, a.logger)

	return pool.Run(ctx)
}
