package renderer

import (
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/richinsley/goclouds/scene"
	"github.com/richinsley/goclouds/uniforms"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame represents a single rendered frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// RecordOptions configure a preview recording.
type RecordOptions struct {
	OutputFile string
	Duration   float64
	FPS        int
	FFMPEGPath string
}

const numBuffers = 3 // frames in flight between renderer and encoder

// getArgs builds the ffmpeg arguments for raw RGBA frames of the given size.
func getArgs(width, height, fps int) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": fps,
	}

	outputArgs = ffmpeg.KwArgs{
		// GL rows are bottom-up; yuv420p needs even dimensions.
		"vf":      "vflip,scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"pix_fmt": "yuv420p",
	}
	switch runtime.GOOS {
	case "darwin":
		log.Debug("Using macOS (VideoToolbox) hardware acceleration.")
		outputArgs["c:v"] = "h264_videotoolbox"
		outputArgs["b:v"] = "12M"
	default:
		log.Debug("Using software encoding pipeline (no hardware acceleration).")
		outputArgs["c:v"] = "libx264"
		outputArgs["crf"] = 18
	}
	return
}

// runEncoder is the Consumer. It starts FFmpeg and feeds it frames from frameChan.
func runEncoder(opts RecordOptions, width, height int, frameChan <-chan *Frame, doneChan chan<- error) {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(width, height, opts.FPS)

	stderr := log.Default().StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()
	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).WithErrorOutput(stderr)

	if opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// Unblock the writer if ffmpeg exits early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	var writeErr error
	for frame := range frameChan {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("failed to write frame %d to FFmpeg: %w", frame.PTS, err)
		}
	}
	pipeWriter.Close()

	if err := <-errc; err != nil {
		doneChan <- fmt.Errorf("ffmpeg failed: %w", err)
		return
	}
	doneChan <- writeErr
}

// RunOffscreen renders opts.Duration seconds of the scene at a fixed timestep
// and encodes them to opts.OutputFile. The clock is bypassed: frame i is drawn
// at time i/fps.
func (r *Renderer) RunOffscreen(s *scene.Scene, opts RecordOptions) error {
	if opts.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", opts.FPS)
	}
	if err := r.ensureTarget(s.Surface); err != nil {
		return err
	}
	width, height := r.target.width, r.target.height
	totalFrames := int(opts.Duration * float64(opts.FPS))
	timeStep := 1.0 / float64(opts.FPS)
	log.Info("Starting in record mode", "output", opts.OutputFile, "frames", totalFrames, "width", width, "height", height)

	frameChan := make(chan *Frame, numBuffers)
	encoderDoneChan := make(chan error, 1)

	// Start the consumer goroutine
	go runEncoder(opts, width, height, frameChan, encoderDoneChan)

	var renderErr error
	for i := 0; i < totalFrames; i++ {
		t := float32(float64(i) * timeStep)
		if err := s.Dispatch(scene.SetUniform{Name: scene.UniformTime, Value: uniforms.FloatValue(t)}); err != nil {
			renderErr = err
			break
		}
		if err := r.RenderFrame(s); err != nil {
			renderErr = fmt.Errorf("frame %d failed: %w", i, err)
			break
		}
		pixels := make([]byte, width*height*4)
		if err := r.target.readPixels(pixels); err != nil {
			renderErr = fmt.Errorf("error reading pixels on frame %d: %w", i, err)
			break
		}
		frameChan <- &Frame{Pixels: pixels, PTS: int64(i)}
	}

	// Close the channel to signal the producer is done
	close(frameChan)

	// Wait for the consumer to finish
	encErr := <-encoderDoneChan
	if renderErr != nil {
		return renderErr
	}
	return encErr
}
