package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/menta2k/lanefit"
	"github.com/menta2k/lanefit/internal/config"
	"github.com/menta2k/lanefit/internal/monitoring"
	"github.com/menta2k/lanefit/internal/utils"
	"github.com/menta2k/lanefit/pkg/dataset"
	"github.com/menta2k/lanefit/pkg/processing"
	"github.com/menta2k/lanefit/pkg/types"
	"github.com/menta2k/lanefit/pkg/vision"
)

// minExplained is the share of returns a label should account for before the
// sample is flagged in the log
const minExplained = 0.5

// manifestEntry describes one exported sample
type manifestEntry struct {
	Index   int             `json:"index"`
	Angle   float64         `json:"angle"`
	Variant string          `json:"variant"`
	Labels  []float64       `json:"labels"`
	Support *vision.Support `json:"support,omitempty"`
	File    string          `json:"file,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// manifest is written next to the exported overlays
type manifest struct {
	RunID   string          `json:"run_id"`
	Version string          `json:"version"`
	Created time.Time       `json:"created"`
	Config  *config.Config  `json:"config"`
	Total   int             `json:"total"`
	Skipped int             `json:"skipped"`
	Samples []manifestEntry `json:"samples"`
}

func main() {
	var cfgPath, csvPath, imageDir, outDir, variant, format, saveCfg string
	var seed uint64
	var limit int
	var expand, flipY, quiet, showVersion bool

	flag.StringVar(&cfgPath, "config", "", "config file (.json, .yaml or .yml)")
	flag.StringVar(&csvPath, "csv", "", "label table, overrides dataset.csv_path")
	flag.StringVar(&imageDir, "images", "", "image directory, overrides dataset.image_dir")
	flag.StringVar(&outDir, "out", "", "output directory, overrides output.dir")
	flag.StringVar(&variant, "variant", "", "label variant: full|reduced")
	flag.StringVar(&format, "format", "", "overlay format: png|jpg|webp")
	flag.Uint64Var(&seed, "seed", 0, "augmentation seed (0 keeps the configured seed)")
	flag.IntVar(&limit, "limit", 0, "export at most this many samples, 0=all")
	flag.BoolVar(&expand, "augment", false, "append rotated copies of a random fraction of the dataset")
	flag.BoolVar(&flipY, "flip-y", false, "labels use a bottom-left origin")
	flag.BoolVar(&quiet, "quiet", false, "mute library diagnostics")
	flag.StringVar(&saveCfg, "save-config", "", "write the effective config to this path and exit")
	flag.BoolVar(&showVersion, "version", false, "print the version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(lanefit.GetVersion())
		return
	}
	if quiet {
		monitoring.SetLogger(nil)
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	if csvPath != "" {
		cfg.Dataset.CSVPath = csvPath
	}
	if imageDir != "" {
		cfg.Dataset.ImageDir = imageDir
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if variant != "" {
		cfg.Dataset.Variant = variant
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if seed != 0 {
		cfg.Augment.Seed = seed
	}
	if flipY {
		cfg.Dataset.FlipY = true
	}

	if saveCfg != "" {
		if err := cfg.Validate(); err != nil {
			log.Fatal(err)
		}
		if err := cfg.SaveToFile(saveCfg); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", saveCfg)
		return
	}

	lf, err := lanefit.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ds, err := lf.OpenDataset()
	if err != nil {
		log.Fatal(err)
	}
	var src dataset.Source = ds
	if expand {
		if src, err = lf.Expand(ds); err != nil {
			log.Fatal(err)
		}
	}

	n := src.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		log.Fatal(err)
	}

	m := manifest{
		RunID:   uuid.New().String(),
		Version: lanefit.GetVersion(),
		Created: time.Now().UTC(),
		Config:  cfg,
		Total:   n,
	}
	var chart []processing.SupportPoint
	log.Printf("run %s: exporting %d of %d samples to %s", m.RunID, n, src.Len(), cfg.Output.Dir)

	for i := 0; i < n; i++ {
		entry := manifestEntry{Index: i}
		s, err := src.Get(i)
		if err != nil {
			// Missing captures and degenerate rotations are reported and
			// skipped; anything else is fatal.
			if !errors.Is(err, types.ErrMissingResource) && !errors.Is(err, types.ErrGeometryDegenerate) {
				log.Fatalf("sample %d: %v", i, err)
			}
			log.Printf("skip sample %d: %v", i, err)
			entry.Error = err.Error()
			m.Skipped++
			m.Samples = append(m.Samples, entry)
			continue
		}

		entry.Angle = s.Angle
		entry.Variant = s.Labels.Variant().String()
		entry.Labels = s.Labels.Values()
		if sup, err := lf.Support(s); err == nil {
			entry.Support = &sup
			chart = append(chart, processing.SupportPoint{Index: i, Angle: s.Angle, Explained: sup.Explained})
			if sup.Returns > 0 && sup.Explained < minExplained {
				log.Printf("sample %d: only %.0f%% of %d returns lie near the label", i, 100*sup.Explained, sup.Returns)
			}
		}
		path, err := lf.ExportOverlay(s, i)
		if err != nil {
			log.Printf("export sample %d failed: %v", i, err)
			entry.Error = err.Error()
		} else {
			entry.File = filepath.Base(path)
		}
		m.Samples = append(m.Samples, entry)
	}

	js, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	manifestPath := filepath.Join(cfg.Output.Dir, "manifest.json")
	if err := os.WriteFile(manifestPath, js, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d skipped)", manifestPath, m.Skipped)

	if len(chart) > 0 {
		chartPath := filepath.Join(cfg.Output.Dir, "support.png")
		if err := processing.NewProcessor().SaveSupportChart(chart, chartPath); err != nil {
			log.Printf("support chart failed: %v", err)
		} else {
			log.Printf("wrote %s", chartPath)
		}
	}
}
