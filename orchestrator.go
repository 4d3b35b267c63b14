// Package qdl ties the protocol engines together: over a USB transport the
// caller has already opened, run Sahara to deliver the bootstrap loader,
// then hand off to Firehose
// for provisioning or programming, matching original_source/qdl.cpp's
// main() and firehose.cpp's Firehose::run().
package qdl

import (
	"context"
	"time"

	"github.com/JoshuaDoes/qdl/executor"
	"github.com/JoshuaDoes/qdl/firehose"
	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/JoshuaDoes/qdl/manifest"
	"github.com/JoshuaDoes/qdl/sahara"
)

// bootSettle is how long the orchestrator waits after Sahara completes for
// the uploaded bootloader to boot and start speaking Firehose. A package
// var, like firehose's sleep hook, so tests can shrink it.
var bootSettle = 3 * time.Second

// drainWindow is how long the orchestrator drains Firehose's channel
// before issuing the first real command, absorbing the bootloader's
// startup log chatter.
const drainWindow = 1000 * time.Millisecond

// Transport is everything the orchestrator needs from the USB bulk link:
// the union of sahara.Transport and firehose.Transport. transport.Transport
// satisfies it structurally, and tests can supply a fake in its place.
type Transport interface {
	Read(buf []byte, timeout time.Duration) (int, error)
	Write(buf []byte, eot bool) (int, error)
}

// Options configures one Run invocation.
type Options struct {
	BootstrapImage string
	Storage        string // "emmc" or "ufs"
	IncludeDir     string
	Plan           *manifest.PlanContext
}

// Run drives the full boot sequence against an already-open transport:
// Sahara upload, a settle sleep, a Firehose drain, then either two-pass
// UFS provisioning or configure+program+patch+bootable+reset, depending on
// whether opts.Plan carries a UFS plan.
func Run(ctx context.Context, t Transport, opts Options) error {
	if err := sahara.NewEngine(t).Run(opts.BootstrapImage); err != nil {
		return err
	}

	select {
	case <-time.After(bootSettle):
	case <-ctx.Done():
		return ctx.Err()
	}

	client := firehose.NewClient(t)
	client.Drain(drainWindow)

	if opts.Plan.NeedProvisioning() {
		return runProvisioning(client, opts.Plan.UFS, opts.Storage)
	}
	return runFlash(client, opts.Plan, opts.Storage, opts.IncludeDir)
}

func runProvisioning(client *firehose.Client, plan *manifest.UFSPlan, storage string) error {
	if err := client.Configure(true, storage); err != nil {
		return err
	}

	if err := client.ProvisionUFS(plan); err != nil {
		qlog.L().Errorf("UFS provisioning failed")
		return err
	}
	qlog.L().Infof("UFS provisioning succeeded")
	return nil
}

func runFlash(client *firehose.Client, plan *manifest.PlanContext, storage, incdir string) error {
	if err := client.Configure(false, storage); err != nil {
		return err
	}
	return executor.Run(client, plan, incdir)
}
