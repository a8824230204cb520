package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/moepig/aws-inventory/resources"
	"github.com/moepig/aws-inventory/resources/ec2"
	"github.com/moepig/aws-inventory/resources/elasticache"
	"github.com/moepig/aws-inventory/resources/elb"
	"github.com/moepig/aws-inventory/resources/rds"
	"github.com/moepig/aws-inventory/resources/s3"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(newRegistry())
	cmd.SetArgs(normalizeArgs(cmd, os.Args[1:]))

	err := cmd.ExecuteContext(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\n\nInterrupted, bye!")
		os.Exit(130)
	}
	if err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// newRegistry registers every lister in report order
func newRegistry() *resources.Registry {
	return resources.NewRegistry(
		s3.NewLister(),
		ec2.NewVPCLister(),
		ec2.NewInstanceLister(),
		elb.NewLister(),
		rds.NewInstanceLister(),
		elasticache.NewClusterLister(),
		ec2.NewSecurityGroupLister(),
		ec2.NewVolumeLister(),
		ec2.NewSnapshotLister(),
		rds.NewSnapshotLister(),
		elasticache.NewSnapshotLister(),
	)
}
