// Command webcam runs the background segmentation pipeline live on a capture
// device and shows the composited result.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/matte-ai/go-matte/images"
	"github.com/matte-ai/go-matte/models"
	"github.com/matte-ai/go-matte/pipeline"
)

func main() {
	var (
		deviceID  int
		modelDir  string
		modelName string
		threshold float64
		contour   float64
		smooth    float64
		bgColor   uint64
		useGPU    bool
	)
	flag.IntVar(&deviceID, "device", 0, "video capture device ID")
	flag.StringVar(&modelDir, "models", "models", "directory holding model files")
	flag.StringVar(&modelName, "model", string(models.SINet), "segmentation model (sinet or modnet)")
	flag.Float64Var(&threshold, "threshold", 0.5, "segmentation threshold [0,1]")
	flag.Float64Var(&contour, "contour-filter", 0.05, "contour area filter fraction [0,1]")
	flag.Float64Var(&smooth, "smooth", 0.5, "mask smoothing strength [0,1]")
	flag.Uint64Var(&bgColor, "color", 0x000000, "background replacement color (0xRRGGBB)")
	flag.BoolVar(&useGPU, "gpu", false, "use the platform's accelerated execution provider")
	flag.Parse()

	cfg := pipeline.Config{
		Threshold:              float32(threshold),
		ContourFilter:          float32(contour),
		SmoothContour:          float32(smooth),
		BackgroundColor:        uint32(bgColor),
		Model:                  models.Name(modelName),
		UseAcceleratedProvider: useGPU,
		ModelDir:               modelDir,
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("pipeline setup failed")
	}
	defer p.Close()

	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer webcam.Close()

	window := gocv.NewWindow("Background Removal")
	defer window.Close()

	img := gocv.NewMat()
	defer img.Close()

	frameCount := 0
	lastTime := time.Now()

	fmt.Printf("start reading camera device: %v\n", deviceID)
	for {
		if ok := webcam.Read(&img); !ok {
			fmt.Printf("cannot read device %v\n", deviceID)
			return
		}
		if img.Empty() {
			continue
		}

		frame := frameFromBGRMat(img)
		if err := p.Render(frame); err != nil {
			// The frame passes through unmodified; keep the stream running.
			logrus.WithError(err).Debug("render skipped")
		} else {
			writeBGRMat(frame, &img)
		}

		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			stats := p.Timings()
			fmt.Printf("%.1f fps | render avg %.1f ms max %.1f ms\n",
				float64(frameCount)/elapsed, stats.AverageMs, stats.MaxMs)
			frameCount = 0
			lastTime = time.Now()
		}

		window.IMShow(img)
		if window.WaitKey(1) == 27 {
			return
		}
	}
}

// frameFromBGRMat wraps a webcam BGR Mat as a single-plane video frame.
func frameFromBGRMat(img gocv.Mat) *images.VideoFrame {
	return &images.VideoFrame{
		Width:    img.Cols(),
		Height:   img.Rows(),
		Format:   images.FormatBGR,
		Data:     [][]byte{img.ToBytes()},
		Linesize: []int{img.Cols() * 3},
	}
}

// writeBGRMat copies a rendered BGR frame back into the display Mat.
func writeBGRMat(frame *images.VideoFrame, img *gocv.Mat) {
	rendered, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data[0])
	if err != nil {
		return
	}
	defer rendered.Close()
	rendered.CopyTo(img)
}
