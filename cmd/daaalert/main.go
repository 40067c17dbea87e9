// cmd/daaalert/main.go

// daaalert runs the alerting logic over a state-sequence file and writes
// a CSV of the timesteps that produce an alert.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"wellclear/pkg/daa"
	"wellclear/pkg/log"
	"wellclear/pkg/math"
	"wellclear/pkg/seq"
)

func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "** Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	noma := flag.Bool("noma", false, "nominal A preset: kinematic bands, turn rate 1.5 [deg/s]")
	nomb := flag.Bool("nomb", false, "nominal B preset: kinematic bands, turn rate 3.0 [deg/s]")
	conf := flag.String("conf", "", "configuration `file`")
	output := flag.String("output", "", "output `file` (default <input>.csv)")
	loglevel := flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: daaalert [--noma | --nomb | --conf <configuration file> | --output <output file> | --help] <input file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	lg := log.New(*loglevel, "")

	d := daa.New()
	if *noma {
		d.SetNominalA()
	} else if *nomb {
		d.SetNominalB()
	}
	if *conf != "" {
		p := d.Parameters().Copy()
		warnings, err := p.LoadFromFile(*conf)
		if err != nil {
			errorf("File %s not found", *conf)
		}
		for _, w := range warnings {
			lg.Warnf("%s: %s", *conf, w)
		}
		if !d.SetParameters(p) {
			errorf("Configuration file %s is inconsistent: %s", *conf, d.Message())
		}
	}

	if flag.NArg() == 0 {
		errorf("One input file must be provided")
	}
	if flag.NArg() > 1 {
		errorf("Only one input file can be provided")
	}
	input := flag.Arg(0)
	rd, err := seq.ReadFile(input)
	if err != nil {
		errorf("File %s cannot be read: %v", input, err)
	}

	out := *output
	if out == "" {
		scenario := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		out = scenario + ".csv"
	}
	f, err := os.Create(out)
	if err != nil {
		errorf("%v", err)
	}
	defer f.Close()

	lg.Infof("processing %s into %s (%d timesteps)", input, out, len(rd.Steps))

	// Each timestep is independent, so run one façade copy per timestep.
	alerts := make([]int, len(rd.Steps))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range rd.Steps {
		g.Go(func() error {
			alerts[i] = stepAlert(d.Copy(), rd.Steps[i])
			return nil
		})
	}
	g.Wait()

	fmt.Fprintln(f, "Time, Alerting")
	for i, step := range rd.Steps {
		if alerts[i] > 0 {
			fmt.Fprintf(f, "%.1f, %d\n", step.Time, alerts[i])
		}
	}
}

// stepAlert loads one timestep into the façade and returns the most
// severe alert level over all traffic.
func stepAlert(d *daa.Daidalus, step seq.Timestep) int {
	d.Reset()
	for i, ac := range step.Aircraft {
		if i == 0 {
			d.SetOwnshipState(ac.ID, ac.Pos, ac.Vel, step.Time)
		} else {
			d.AddTrafficStateNow(ac.ID, ac.Pos, ac.Vel)
		}
	}
	level := 0
	for ac := 1; ac < d.NumberOfAircraft(); ac++ {
		level = math.Max(level, d.Alerting(ac))
	}
	return level
}
