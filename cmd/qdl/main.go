package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JoshuaDoes/qdl"
	"github.com/JoshuaDoes/qdl/firehose"
	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/JoshuaDoes/qdl/manifest"
	"github.com/JoshuaDoes/qdl/transport"
	"github.com/spf13/pflag"
)

const (
	app = "qdl"
	ver = "v1.0.0"
	dev = "JoshuaDoes"
)

const defaultStorage = "ufs"

var (
	help                 = false
	debug                = false
	firmwareOnly         = false
	finalizeProvisioning = false
	storage              = defaultStorage
	include              = ""
)

func main() {
	fmt.Printf("%s %s - %s\n", app, ver, dev)

	pflag.Usage = usage
	pflag.CommandLine.SortFlags = false
	pflag.BoolVarP(&help, "help", "h", false, "")
	pflag.BoolVarP(&debug, "debug", "d", false, "")
	pflag.BoolVarP(&firmwareOnly, "firmware", "f", false, "")
	pflag.StringVarP(&storage, "storage", "s", defaultStorage, "")
	pflag.BoolVarP(&finalizeProvisioning, "finalize-provisioning", "l", false, "")
	pflag.StringVarP(&include, "include", "i", "", "")
	pflag.Parse()

	if help {
		usage()
		os.Exit(0)
	}

	args := pflag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "%s: at least a bootstrap image and one manifest are required\n", app)
		usage()
		os.Exit(1)
	}

	verbosity := 2
	if debug {
		verbosity = 3
	}
	qlog.Init(verbosity)
	firehose.Debug = debug
	firehose.FirmwareOnly = firmwareOnly

	progMbn := args[0]
	plan := &manifest.PlanContext{}
	for _, path := range args[1:] {
		if err := loadManifest(plan, path, finalizeProvisioning); err != nil {
			qlog.L().Errorf("%s: %v", path, err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	t, err := transport.Open(ctx)
	if err != nil {
		qlog.L().Errorf("failed to open EDL device: %v", err)
		os.Exit(1)
	}
	defer t.Close()

	err = qdl.Run(ctx, t, qdl.Options{
		BootstrapImage: progMbn,
		Storage:        storage,
		IncludeDir:     include,
		Plan:           plan,
	})
	if err != nil {
		qlog.L().Errorf("%v", err)
		os.Exit(1)
	}
}

// loadManifest detects path's type by its root element and loads it into
// plan, matching original_source/qdl.cpp's main() dispatch loop.
func loadManifest(plan *manifest.PlanContext, path string, finalizeProvisioning bool) error {
	typ, err := manifest.DetectType(path)
	if err != nil {
		return err
	}

	switch typ {
	case manifest.TypePatch:
		return plan.LoadPatches(path)
	case manifest.TypeProgram:
		return plan.LoadPrograms(path)
	case manifest.TypeUFS:
		return plan.LoadUFS(path, finalizeProvisioning)
	case manifest.TypeContents:
		qlog.L().Infof("%s: contents manifest recognized but not implemented, skipping", path)
		return nil
	default:
		return manifest.ErrUnrecognizedRoot
	}
}
