package analytics

import (
	"context"
	"hash/fnv"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"commons/models"
)

const (
	minWorkers = 4
	maxWorkers = 16
)

type Store interface {
	SaveAnalysis(ctx context.Context, key string, result models.AnalysisResult) error
}

type AnomalyCallback func(key string)

type EngineConfig struct {
	Workers          int
	QueueSize        int
	WindowSize       int
	AnomalyThreshold float64
	SaveTimeout      time.Duration
}

// series is the per-key state. Window and AnomalyDetector are not safe for
// concurrent use, so every access goes through mu.
type series struct {
	mu       sync.Mutex
	window   *Window
	detector *AnomalyDetector
}

type Engine struct {
	cfg       EngineConfig
	store     Store
	onAnomaly AnomalyCallback
	log       *slog.Logger

	mu     sync.RWMutex
	series map[string]*series

	queueMu sync.RWMutex
	closed  bool
	wg      sync.WaitGroup

	// one queue per worker; a key always hashes to the same queue so its
	// samples are applied in arrival order
	shards []chan models.Sample
}

func NewEngine(cfg EngineConfig, store Store, onAnomaly AnomalyCallback, logger *slog.Logger) (*Engine, error) {
	// fail fast on bad window parameters instead of inside a worker
	if _, err := NewAnomalyDetector(cfg.WindowSize, cfg.AnomalyThreshold); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 2 * time.Second
	}

	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() * 2
	}
	numWorkers = min(max(numWorkers, minWorkers), maxWorkers)
	cfg.Workers = numWorkers

	engine := &Engine{
		cfg:       cfg,
		store:     store,
		onAnomaly: onAnomaly,
		log:       logger,
		series:    make(map[string]*series),
		shards:    make([]chan models.Sample, numWorkers),
	}

	shardSize := max(cfg.QueueSize/numWorkers, 1)
	for i := range engine.shards {
		engine.shards[i] = make(chan models.Sample, shardSize)
	}

	logger.Info("starting analytics workers", "workers", numWorkers, "window_size", cfg.WindowSize)
	engine.wg.Add(numWorkers)
	for _, shard := range engine.shards {
		go engine.processSamples(shard)
	}

	return engine, nil
}

func (e *Engine) Workers() int {
	return e.cfg.Workers
}

// ProcessSample queues a sample without blocking. It reports false when the
// sample was dropped because the queue is full or the engine is closed.
func (e *Engine) ProcessSample(sample models.Sample) bool {
	e.queueMu.RLock()
	defer e.queueMu.RUnlock()

	if e.closed {
		e.log.Warn("engine closed, dropping sample", "key", sample.Key)
		return false
	}

	select {
	case e.shards[e.shardFor(sample.Key)] <- sample:
		return true
	default:
		e.log.Warn("sample queue is full, dropping sample", "key", sample.Key)
		return false
	}
}

// Close stops accepting samples, drains the queues and waits for the workers.
func (e *Engine) Close() {
	e.queueMu.Lock()
	if e.closed {
		e.queueMu.Unlock()
		return
	}
	e.closed = true
	for _, shard := range e.shards {
		close(shard)
	}
	e.queueMu.Unlock()

	e.wg.Wait()
}

func (e *Engine) Window(key string) (models.WindowState, bool) {
	e.mu.RLock()
	s, ok := e.series[key]
	e.mu.RUnlock()
	if !ok {
		return models.WindowState{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return windowState(key, s.window), true
}

func (e *Engine) Keys() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.series))
	for k := range e.series {
		keys = append(keys, k)
	}
	e.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

func (e *Engine) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(e.shards)))
}

func (e *Engine) processSamples(shard <-chan models.Sample) {
	defer e.wg.Done()
	for sample := range shard {
		e.processSample(sample)
	}
}

func (e *Engine) lookup(key string) *series {
	e.mu.RLock()
	s, ok := e.series[key]
	e.mu.RUnlock()
	if ok {
		return s
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok = e.series[key]; ok {
		return s
	}

	// parameters were validated in NewEngine
	window, _ := NewWindow(e.cfg.WindowSize)
	detector, _ := NewAnomalyDetector(e.cfg.WindowSize, e.cfg.AnomalyThreshold)
	s = &series{window: window, detector: detector}
	e.series[key] = s
	return s
}

func (e *Engine) processSample(sample models.Sample) {
	s := e.lookup(sample.Key)

	s.mu.Lock()
	s.window.Add(sample.Value)
	isAnomaly, zScore := s.detector.Detect(sample.Value)
	result := models.AnalysisResult{
		Key:            sample.Key,
		Value:          sample.Value,
		RollingAverage: s.window.Average(),
		Fill:           s.window.Fill(),
		Oldest:         s.window.Oldest(),
		IsAnomaly:      isAnomaly,
		ZScore:         zScore,
		ProcessedAt:    sample.ProcessedAt(),
	}
	s.mu.Unlock()

	if e.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.SaveTimeout)
		if err := e.store.SaveAnalysis(ctx, sample.Key, result); err != nil {
			e.log.Error("failed to save analysis", "key", sample.Key, "error", err)
		}
		cancel()
	}

	if isAnomaly {
		e.log.Warn("anomaly detected",
			"key", sample.Key,
			"value", sample.Value,
			"z_score", zScore,
			"rolling_avg", result.RollingAverage,
		)

		if e.onAnomaly != nil {
			e.onAnomaly(sample.Key)
		}
	}
}

func windowState(key string, w *Window) models.WindowState {
	state := models.WindowState{
		Key:      key,
		Capacity: w.Capacity(),
		Fill:     w.Fill(),
		Sum:      w.Sum(),
		Oldest:   w.Oldest(),
		Newest:   w.Newest(),
		Samples:  w.Snapshot(),
	}
	if w.Fill() > 0 {
		avg := w.Average()
		state.Average = &avg
	}
	return state
}
