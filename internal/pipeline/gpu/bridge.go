//go:build linux

// Package gpu wraps libavcodec/libavformat/libavfilter plus CUDA hardware
// contexts to drive a persistent decode -> scale -> encode pipeline per
// worker, with no host-memory round trip for pixel data. All pixel data
// stays in GPU memory from NVDEC output through the scale_cuda filter to
// NVENC input.
//
// Only this file imports "C"; everything else in the package operates on
// the opaque handles defined here.
package gpu

/*
#cgo pkg-config: libavcodec libavformat libavfilter libavutil
#cgo LDFLAGS: -lcuda -lcudart
#include "shim.h"
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/brightcue/nvtranscode/internal/model"
)

// handle wraps a C pointer that must be freed exactly once.
type pipelineHandle struct {
	ptr *C.gpu_pipeline_t
}

type fileHandle struct {
	ptr *C.gpu_file_ctx_t
}

func cError(msg *C.char) error {
	if msg == nil {
		return nil
	}
	defer C.gpu_free_string(msg)
	return fmt.Errorf("%s", C.GoString(msg))
}

func toDecoderOpts(o model.DecoderOptions) C.gpu_decoder_opts_t {
	return C.gpu_decoder_opts_t{
		width:  C.int(o.Width),
		height: C.int(o.Height),
		tb_num: C.int(o.TimeBaseNum),
		tb_den: C.int(o.TimeBaseDen),
	}
}

func toEncoderOpts(o model.EncoderOptions) (C.gpu_encoder_opts_t, func()) {
	preset := C.CString(string(o.Preset))
	rc := C.CString(string(o.RC))
	profile := C.CString(string(o.Profile))
	free := func() {
		C.free(unsafe.Pointer(preset))
		C.free(unsafe.Pointer(rc))
		C.free(unsafe.Pointer(profile))
	}
	return C.gpu_encoder_opts_t{
		preset:      preset,
		rc:          rc,
		cq:          C.int(o.CQ),
		profile:     profile,
		bitrate_bps: C.int64_t(o.BitrateBps),
		width:       C.int(o.Width),
		height:      C.int(o.Height),
		fps_num:     C.int(o.FrameRateNum),
		fps_den:     C.int(o.FrameRateDen),
	}, free
}

func toScalerOpts(o model.ScalerOptions) C.gpu_scaler_opts_t {
	return C.gpu_scaler_opts_t{
		src_w: C.int(o.SrcWidth),
		src_h: C.int(o.SrcHeight),
		dst_w: C.int(o.DstWidth),
		dst_h: C.int(o.DstHeight),
	}
}

func createPipeline(gpuID int, d model.DecoderOptions, e model.EncoderOptions, s model.ScalerOptions) (*pipelineHandle, error) {
	dopts := toDecoderOpts(d)
	eopts, freeEopts := toEncoderOpts(e)
	defer freeEopts()
	sopts := toScalerOpts(s)

	var errmsg *C.char
	ptr := C.gpu_pipeline_create(C.int(gpuID), &dopts, &eopts, &sopts, &errmsg)
	if ptr == nil {
		return nil, cError(errmsg)
	}
	return &pipelineHandle{ptr: ptr}, nil
}

func (h *pipelineHandle) destroy() {
	if h == nil || h.ptr == nil {
		return
	}
	C.gpu_pipeline_destroy(h.ptr)
	h.ptr = nil
}

func (h *pipelineHandle) rebuildScaler(s model.ScalerOptions) error {
	sopts := toScalerOpts(s)
	var errmsg *C.char
	if C.gpu_pipeline_rebuild_scaler(h.ptr, &sopts, &errmsg) != 0 {
		return cError(errmsg)
	}
	return nil
}

func (h *pipelineHandle) flushCodecs() {
	C.gpu_pipeline_flush_codecs(h.ptr)
}

func openFile(h *pipelineHandle, inputPath, outputPath string) (*fileHandle, error) {
	cIn := C.CString(inputPath)
	defer C.free(unsafe.Pointer(cIn))
	cOut := C.CString(outputPath)
	defer C.free(unsafe.Pointer(cOut))

	var errmsg *C.char
	ptr := C.gpu_file_open(h.ptr, cIn, cOut, &errmsg)
	if ptr == nil {
		return nil, cError(errmsg)
	}
	return &fileHandle{ptr: ptr}, nil
}

func (f *fileHandle) process(h *pipelineHandle) (int64, error) {
	var frameCount C.int64_t
	var errmsg *C.char
	if C.gpu_file_process(h.ptr, f.ptr, &frameCount, &errmsg) != 0 {
		return 0, cError(errmsg)
	}
	return int64(frameCount), nil
}

func (f *fileHandle) close() {
	if f == nil || f.ptr == nil {
		return
	}
	C.gpu_file_close(f.ptr)
	f.ptr = nil
}
