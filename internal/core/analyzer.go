package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"dataspark.io/insights-service/internal/dataset"
	"dataspark.io/insights-service/internal/llm"
	"dataspark.io/insights-service/internal/store"
)

// GenerationErrorPrefix marks insight text produced from a failed generator
// call. Such text is cached and returned like any successful generation; the
// record's status column is what tells the two apart.
const GenerationErrorPrefix = "Error generating insights: "

// InsightStore is the durable cache the Analyzer reads through.
type InsightStore interface {
	LookupInsight(cacheKey string) (*store.Insight, error)
	SaveInsight(cacheKey, insights, status string) error
}

// Analyzer composes fingerprinting, summarization, generation and the cache
// into the per-request analysis flow. It holds no per-request state; the only
// shared mutable resources are the injected caches.
type Analyzer struct {
	store   InsightStore
	gen     llm.Generator
	memo    *MemoCache
	timeout time.Duration
}

func NewAnalyzer(st InsightStore, gen llm.Generator, memo *MemoCache, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Analyzer{
		store:   st,
		gen:     gen,
		memo:    memo,
		timeout: timeout,
	}
}

// AnalyzeWithCaching returns insight text for a frame and the cache key it is
// stored under. The first call for a given fingerprint invokes the generator
// and writes through; later calls with the same leading rows are served from
// cache, across restarts too. Concurrent first-time requests for one
// fingerprint may both generate; the last write wins, which is fine since
// both hold valid text for the same key.
//
// Input errors (an unsummarizable dataset) propagate to the caller and are
// never cached. Generator failures do not: they fold into prefixed error text
// that is cached and returned as a normal result.
func (a *Analyzer) AnalyzeWithCaching(ctx context.Context, frame *dataset.Frame) (string, string, error) {
	cacheKey := dataset.Fingerprint(frame)

	if text, ok := a.memo.Get(cacheKey); ok && text != "" {
		return text, cacheKey, nil
	}

	cached, err := a.store.LookupInsight(cacheKey)
	if err != nil {
		// A broken store degrades to a miss, not a failed request.
		log.Printf("Insight lookup failed for key %s, treating as miss: %v", cacheKey, err)
	} else if cached != nil && cached.Insights != "" {
		a.memo.Set(cacheKey, cached.Insights)
		return cached.Insights, cacheKey, nil
	}

	summary, err := dataset.Summarize(frame)
	if err != nil {
		return "", cacheKey, err
	}

	genCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, genErr := a.gen.Generate(genCtx, summary)
	status := store.StatusOK
	if genErr != nil {
		text = fmt.Sprintf("%s%v", GenerationErrorPrefix, genErr)
		status = store.StatusError
	}

	if err := a.store.SaveInsight(cacheKey, text, status); err != nil {
		log.Printf("Insight generated but not persisted for key %s: %v", cacheKey, err)
	}
	a.memo.Set(cacheKey, text)

	return text, cacheKey, nil
}
