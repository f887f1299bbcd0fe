package model

// Preset is the NVENC performance/quality preset.
type Preset string

const (
	PresetP0 Preset = "p0"
	PresetP1 Preset = "p1"
	PresetP2 Preset = "p2"
	PresetP3 Preset = "p3"
	PresetP4 Preset = "p4"
	PresetP5 Preset = "p5"
	PresetP6 Preset = "p6"
	PresetP7 Preset = "p7"
)

// RateControl is the NVENC rate-control mode.
type RateControl string

const (
	RateControlCBR RateControl = "cbr"
	RateControlVBR RateControl = "vbr"
	RateControlCQ  RateControl = "cq"
)

// Profile is the H.264 profile.
type Profile string

const (
	ProfileBaseline Profile = "baseline"
	ProfileMain     Profile = "main"
	ProfileHigh     Profile = "high"
)

// Level is the H.264 level; "auto" lets the encoder pick based on resolution/bitrate.
type Level string

const LevelAuto Level = "auto"

// EncoderOptions is the typed replacement for the ad-hoc option strings
// (av_opt_set(ctx, "preset", "p2", 0), ...) used to configure an NVENC
// session.
type EncoderOptions struct {
	Width, Height int
	FrameRateNum  int
	FrameRateDen  int
	BitrateBps    int64
	Preset        Preset
	RC            RateControl
	CQ            uint8
	Profile       Profile
	Level         Level
	GPUID         int
}

// DefaultEncoderOptions returns the 1280x720/25fps/1.5Mbit encoder
// configuration required by spec.md section 4.3.1.
func DefaultEncoderOptions(gpuID int) EncoderOptions {
	return EncoderOptions{
		Width:        1280,
		Height:       720,
		FrameRateNum: 25,
		FrameRateDen: 1,
		BitrateBps:   1_500_000,
		Preset:       PresetP2,
		RC:           RateControlVBR,
		CQ:           30,
		Profile:      ProfileMain,
		Level:        LevelAuto,
		GPUID:        gpuID,
	}
}

// DecoderOptions configures the NVDEC H.264 decoder session.
type DecoderOptions struct {
	Width, Height int
	TimeBaseNum   int
	TimeBaseDen   int
	SurfaceFormat string // "cuda"
	SWFallback    string // "nv12"
	GPUID         int
}

// DefaultDecoderOptions returns the 1920x1080@1/25 decoder configuration
// required by spec.md section 4.3.1.
func DefaultDecoderOptions(gpuID int) DecoderOptions {
	return DecoderOptions{
		Width:         1920,
		Height:        1080,
		TimeBaseNum:   1,
		TimeBaseDen:   25,
		SurfaceFormat: "cuda",
		SWFallback:    "nv12",
		GPUID:         gpuID,
	}
}

// ScalerOptions configures the GPU scaler filter graph node.
type ScalerOptions struct {
	SrcWidth, SrcHeight int
	DstWidth, DstHeight int
	PixelFormat         string // "nv12"
	GPUID               int
}

// DefaultScalerOptions returns the 1920x1080 -> 1280x720 scale-graph
// configuration required by spec.md section 4.3.1.
func DefaultScalerOptions(gpuID int) ScalerOptions {
	return ScalerOptions{
		SrcWidth:    1920,
		SrcHeight:   1080,
		DstWidth:    1280,
		DstHeight:   720,
		PixelFormat: "nv12",
		GPUID:       gpuID,
	}
}
