package config

import "time"

// Config is the fully resolved runtime configuration for the transcoder
// daemon, assembled once at startup from environment variables (with
// defaults) and CLI flags. Nothing downstream reads os.Getenv directly.
type Config struct {
	// Workers is W: the fixed worker-pool size.
	Workers int
	// GPUCount is G: the number of physical GPUs workers are partitioned across.
	GPUCount int
	// QueueCapacity is Qmax: the bounded job queue capacity.
	QueueCapacity int
	// ProcessedRingSize bounds the in-memory processed-set ring.
	ProcessedRingSize int

	// ListenAddr is the HTTP control-plane listen address (daemon mode).
	ListenAddr string

	InputDir  string
	OutputDir string

	// SpawnStagger is the delay between starting successive workers.
	SpawnStagger time.Duration
	// CallbackTimeout bounds outbound completion-callback requests.
	CallbackTimeout time.Duration
	// StatsInterval is the stats reporter's print cadence.
	StatsInterval time.Duration

	// FFmpegBin is the ffmpeg binary used for the GPU hardware preflight check.
	FFmpegBin string

	// NoGPU enables diagnostic mode: workers acknowledge jobs without
	// touching any codec. Set via --no-gpu.
	NoGPU bool
	// Batch selects directory-scan ingestion over the HTTP daemon. Set via --batch.
	Batch bool
}

// Load assembles a Config from environment variables, falling back to the
// defaults named in SPEC_FULL.md section 4.10. CLI flags for NoGPU and Batch
// are applied by the caller after Load returns.
func Load() *Config {
	return &Config{
		Workers:           ParseInt("TRANSCODE_WORKERS", 14),
		GPUCount:          ParseInt("TRANSCODE_GPU_COUNT", 2),
		QueueCapacity:     ParseInt("TRANSCODE_QUEUE_CAPACITY", 2000),
		ProcessedRingSize: ParseInt("TRANSCODE_PROCESSED_RING", 2000),
		ListenAddr:        ParseString("TRANSCODE_LISTEN_ADDR", ":8080"),
		InputDir:          ParseString("TRANSCODE_INPUT_DIR", "./input"),
		OutputDir:         ParseString("TRANSCODE_OUTPUT_DIR", "./output"),
		SpawnStagger:      ParseDuration("TRANSCODE_SPAWN_STAGGER", 50*time.Millisecond),
		CallbackTimeout:   ParseDuration("TRANSCODE_CALLBACK_TIMEOUT", 10*time.Second),
		StatsInterval:     ParseDuration("TRANSCODE_STATS_INTERVAL", 5*time.Second),
		FFmpegBin:         ParseString("TRANSCODE_FFMPEG_BIN", "ffmpeg"),
	}
}

// Validate checks invariants that must hold before the lifecycle controller
// starts the queue, processed-set, or worker pool.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errInvalidConfig("TRANSCODE_WORKERS must be positive")
	}
	if c.GPUCount <= 0 {
		return errInvalidConfig("TRANSCODE_GPU_COUNT must be positive")
	}
	if c.QueueCapacity <= 0 {
		return errInvalidConfig("TRANSCODE_QUEUE_CAPACITY must be positive")
	}
	return nil
}

type configError string

func (e configError) Error() string { return string(e) }

func errInvalidConfig(msg string) error { return configError(msg) }
