// Command frames runs the background segmentation pipeline over a directory
// of frame-numbered still images and writes the composited results.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/matte-ai/go-matte/images"
	"github.com/matte-ai/go-matte/models"
	"github.com/matte-ai/go-matte/pipeline"
	"github.com/matte-ai/go-matte/util"
)

func main() {
	var (
		inputDir  string
		outputDir string
		modelDir  string
		modelName string
		bgColor   uint64
	)
	flag.StringVar(&inputDir, "input", "", "directory of frame-<n>.png/jpg images")
	flag.StringVar(&outputDir, "output", "out", "directory for composited frames")
	flag.StringVar(&modelDir, "models", "models", "directory holding model files")
	flag.StringVar(&modelName, "model", string(models.SINet), "segmentation model (sinet or modnet)")
	flag.Uint64Var(&bgColor, "color", 0x000000, "background replacement color (0xRRGGBB)")
	flag.Parse()

	if inputDir == "" {
		fmt.Fprintln(os.Stderr, "usage: frames -input <dir> [-output <dir>]")
		os.Exit(2)
	}

	cfg := pipeline.DefaultConfig()
	cfg.Model = models.Name(modelName)
	cfg.ModelDir = modelDir
	cfg.BackgroundColor = uint32(bgColor)

	p, err := pipeline.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("pipeline setup failed")
	}
	defer p.Close()

	frames, err := util.LoadDirectoryImageFiles(inputDir)
	if err != nil {
		logrus.WithError(err).Fatal("loading input frames")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logrus.WithError(err).Fatal("creating output directory")
	}

	for _, file := range frames {
		img, err := gocv.IMDecode(file.Data, gocv.IMReadColor)
		if err != nil || img.Empty() {
			logrus.WithField("path", file.Path).Warn("skipping undecodable frame")
			continue
		}

		frame := &images.VideoFrame{
			Width:    img.Cols(),
			Height:   img.Rows(),
			Format:   images.FormatBGR,
			Data:     [][]byte{img.ToBytes()},
			Linesize: []int{img.Cols() * 3},
		}
		img.Close()

		if err := p.Render(frame); err != nil {
			logrus.WithError(err).WithField("frame", file.Frame).Warn("render skipped")
		}

		out, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data[0])
		if err != nil {
			logrus.WithError(err).WithField("frame", file.Frame).Warn("skipping frame")
			continue
		}
		target := filepath.Join(outputDir, fmt.Sprintf("frame-%d.png", file.Frame))
		gocv.IMWrite(target, out)
		out.Close()
	}

	stats := p.Timings()
	fmt.Printf("processed %d frames | render avg %.1f ms max %.1f ms\n",
		stats.Count, stats.AverageMs, stats.MaxMs)
}
