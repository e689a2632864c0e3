package usecase

import (
	"NiftyPulse/internal/domain/models"
	drepo "NiftyPulse/internal/domain/repository"
	mid "NiftyPulse/internal/middleware"
	"context"
)

// SpotCollector collects spot ticks from the market stream and processes them.
type SpotCollector struct {
	stream  drepo.SpotStream
	proc    *SnapshotProcessor
	metrics drepo.Metrics
	pipe    *mid.TickPipeline
}

// NewSpotCollector creates a new SpotCollector instance.
func NewSpotCollector(stream drepo.SpotStream, proc *SnapshotProcessor, metrics drepo.Metrics, pipe *mid.TickPipeline) *SpotCollector {
	return &SpotCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *SpotCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *SpotCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, nil); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tkCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tkCh, errCh)
	return nil
}

func (c *SpotCollector) consume(ctx context.Context, tkCh <-chan *models.SpotTick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tkCh:
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.proc.Process(ctx, t)
			}
			c.metrics.RecordSpot(t.Price, t.VIX)
		}
	}
}

func (c *SpotCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying SnapshotProcessor for lifecycle management.
func (c *SpotCollector) Processor() *SnapshotProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *SpotCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
