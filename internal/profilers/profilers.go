// Package profilers sets up optional profiling for the simulation binaries.
//
// If linked, it installs the flags -prof (HTTP pprof server port) and -cpu_profile (file).
// It only supports debugging, and otherwise has no effect on the simulation.
package profilers

import (
	"context"
	"flag"
	"fmt"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime/pprof"
)

var (
	flagProfiler   = flag.Int("prof", -1, "If set, serves pprof over HTTP at the given port, and keeps the program alive at the end until interrupted.")
	flagCPUProfile = flag.String("cpu_profile", "", "write cpu profile to `file`")
)

// Setup starts the profilers configured by the flags. The returned function must be called
// (typically deferred) before the program exits: it stops the CPU profile and, if the HTTP
// profiler is running, blocks until ctx is done.
func Setup(ctx context.Context) (onQuit func(), err error) {
	var cpuProfile *os.File
	if *flagCPUProfile != "" {
		cpuProfile, err = os.Create(*flagCPUProfile)
		if err != nil {
			return nil, errors.Wrapf(err, "could not create CPU profile file %q", *flagCPUProfile)
		}
		if err = pprof.StartCPUProfile(cpuProfile); err != nil {
			_ = cpuProfile.Close()
			return nil, errors.Wrap(err, "could not start CPU profile")
		}
	}
	addr := ""
	if *flagProfiler >= 0 {
		addr = fmt.Sprintf("localhost:%d", *flagProfiler)
		klog.Infof("Profiler serving on http://%s/debug/pprof", addr)
		go func() {
			klog.Fatal(http.ListenAndServe(addr, nil))
		}()
	}

	onQuit = func() {
		if cpuProfile != nil {
			pprof.StopCPUProfile()
			if err := cpuProfile.Close(); err != nil {
				klog.Errorf("Failed to close CPU profile %q: %v", *flagCPUProfile, err)
			}
		}
		if addr != "" && ctx.Err() == nil {
			fmt.Printf("- Program finished: kept alive with profiler opened at http://%s/debug/pprof\n", addr)
			fmt.Printf("- Interrupt (Ctrl+C) to exit\n")
			<-ctx.Done()
		}
	}
	return onQuit, nil
}
