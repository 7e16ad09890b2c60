// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command pktqgraph renders throughput-vs-concurrency graphs from a
// pktqbench JSON report, one PNG per queue capacity.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// BenchmarkResult mirrors the pktqbench report schema.
type BenchmarkResult struct {
	NumProducers        int     `json:"num_producers"`
	NumConsumers        int     `json:"num_consumers"`
	Capacity            int     `json:"capacity"`
	NumMessages         int64   `json:"num_messages"`
	NumMessagesConsumed int64   `json:"num_messages_consumed"`
	TestDuration        string  `json:"test_duration"`
	ActualElapsed       string  `json:"actual_elapsed"`
	Throughput          float64 `json:"throughput_msgs_sec"`
	Timestamp           int64   `json:"timestamp"`
	GoVersion           string  `json:"go_version"`
}

// SystemInfo mirrors the pktqbench report schema.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents one benchmark session.
type FullReport struct {
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

// concurrencyStats holds median and spread of throughput for one
// concurrency level.
type concurrencyStats struct {
	concurrency float64 // category index on the X axis
	orig        float64 // producers+consumers
	min         float64
	median      float64
	max         float64
}

// statsPoints implements XYer and YErrorer so lines, points and error
// bars can share one data set.
type statsPoints []concurrencyStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].concurrency, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	return s[i].median - s[i].min, s[i].max - s[i].median
}

// categoryTicks places the real concurrency values as labels on a
// categorical axis.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

func main() {
	jsonFile := flag.String("jsonfile", "pktq-results.json", "pktqbench JSON report")
	outputPrefix := flag.String("out", "pktq_graph", "output image filename prefix")
	flag.Parse()

	data, err := os.ReadFile(*jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading JSON file: %v\n", err)
		os.Exit(1)
	}

	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshalling JSON: %v\n", err)
		os.Exit(1)
	}

	// Group by capacity -> concurrency -> throughput samples.
	byCapacity := make(map[int]map[float64][]float64)
	for _, session := range sessions {
		for _, b := range session.Benchmarks {
			x := float64(b.NumProducers + b.NumConsumers)
			if b.Throughput <= 0 {
				continue
			}
			if _, ok := byCapacity[b.Capacity]; !ok {
				byCapacity[b.Capacity] = make(map[float64][]float64)
			}
			byCapacity[b.Capacity][x] = append(byCapacity[b.Capacity][x], b.Throughput)
		}
	}
	if len(byCapacity) == 0 {
		fmt.Fprintln(os.Stderr, "No benchmark data found.")
		os.Exit(1)
	}

	for capacity, samples := range byCapacity {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("pktq throughput vs. concurrency (capacity %d)", capacity)
		p.X.Label.Text = "NumProducers + NumConsumers"
		p.Y.Label.Text = "Throughput (msgs/sec)"
		p.Add(plotter.NewGrid())

		var concValues []float64
		for conc := range samples {
			concValues = append(concValues, conc)
		}
		sort.Float64s(concValues)

		var positions []float64
		var labels []string
		stats := make(statsPoints, 0, len(concValues))
		for i, conc := range concValues {
			positions = append(positions, float64(i))
			labels = append(labels, strconv.FormatFloat(conc, 'f', -1, 64))

			vals := samples[conc]
			sort.Float64s(vals)
			stats = append(stats, concurrencyStats{
				concurrency: float64(i),
				orig:        conc,
				min:         vals[0],
				median:      median(vals),
				max:         vals[len(vals)-1],
			})
		}
		p.X.Tick.Marker = categoryTicks{positions: positions, labels: labels}

		line, err := plotter.NewLine(stats)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating line: %v\n", err)
			continue
		}
		line.Color = plotutil.SoftColors[0]

		points, err := plotter.NewScatter(stats)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating scatter: %v\n", err)
			continue
		}
		points.Color = plotutil.SoftColors[0]
		points.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Radius = vg.Points(4)

		yErrBars, err := plotter.NewYErrorBars(stats)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating error bars: %v\n", err)
			continue
		}
		yErrBars.Color = plotutil.SoftColors[0]

		p.Add(line, points, yErrBars)
		p.Legend.Add("median (min/max bars)", line, points)
		p.Legend.Top = true
		p.Legend.Left = true

		filename := fmt.Sprintf("%s_%d.png", *outputPrefix, capacity)
		if err := p.Save(10*vg.Inch, 7*vg.Inch, filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving plot for capacity %d: %v\n", capacity, err)
			continue
		}
		fmt.Printf("Graph for capacity %d saved to %s\n", capacity, filename)
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}
