// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command pktqbench measures pktq throughput across a scenario matrix
// of producer/consumer counts and queue capacities, and appends the
// results to a JSON report consumed by pktqgraph.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/valyala/fastrand"
	"gopkg.in/yaml.v3"

	"code.hybscloud.com/pktq"
	"code.hybscloud.com/pktq/internal/bench"
)

// Scenario is one cell of the benchmark matrix.
type Scenario struct {
	Producers int `yaml:"producers" json:"producers"`
	Consumers int `yaml:"consumers" json:"consumers"`
	Capacity  int `yaml:"capacity,omitempty" json:"capacity"`
}

// FileConfig is the YAML benchmark description.
type FileConfig struct {
	Duration    string     `yaml:"duration"`
	Capacity    int        `yaml:"capacity"`
	PayloadSize int        `yaml:"payload_size"`
	Counters    bool       `yaml:"counters"`
	Scenarios   []Scenario `yaml:"scenarios"`
}

// BenchmarkResult holds results for one scenario run.
type BenchmarkResult struct {
	NumProducers        int     `json:"num_producers"`
	NumConsumers        int     `json:"num_consumers"`
	Capacity            int     `json:"capacity"`
	NumMessages         int64   `json:"num_messages"`
	NumMessagesConsumed int64   `json:"num_messages_consumed"`
	TestDuration        string  `json:"test_duration"`
	ActualElapsed       string  `json:"actual_elapsed"`
	Throughput          float64 `json:"throughput_msgs_sec"`
	ContentionEvents    uint64  `json:"contention_events,omitempty"`
	Timestamp           int64   `json:"timestamp"`
	GoVersion           string  `json:"go_version"`
}

// SystemInfo holds host information for the report.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents one complete benchmark session.
type FullReport struct {
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

func main() {
	configPath := flag.String("config", "", "YAML benchmark description (overrides the matrix flags)")
	duration := flag.Duration("duration", 2*time.Second, "measurement window per scenario")
	capacity := flag.Int("capacity", 4096, "queue capacity (rounds up to a power of 2)")
	producers := flag.String("producers", "1,2,4", "comma-separated producer counts")
	consumers := flag.String("consumers", "1,2,4", "comma-separated consumer counts")
	payloadSize := flag.Int("payload", 256, "packet payload size in bytes")
	counters := flag.Bool("counters", false, "enable queue counters and report contention")
	outFile := flag.String("out", "pktq-results.json", "JSON report to append the session to")
	flag.Parse()

	cfg := FileConfig{
		Duration:    duration.String(),
		Capacity:    *capacity,
		PayloadSize: *payloadSize,
		Counters:    *counters,
	}
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config %q: %v\n", *configPath, err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing config: %v\n", err)
			os.Exit(1)
		}
	} else {
		prods, err := parseCounts(*producers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -producers: %v\n", err)
			os.Exit(1)
		}
		cons, err := parseCounts(*consumers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -consumers: %v\n", err)
			os.Exit(1)
		}
		for _, p := range prods {
			for _, c := range cons {
				cfg.Scenarios = append(cfg.Scenarios, Scenario{Producers: p, Consumers: c})
			}
		}
	}
	if len(cfg.Scenarios) == 0 {
		fmt.Fprintln(os.Stderr, "No scenarios to run.")
		os.Exit(1)
	}

	window, err := time.ParseDuration(cfg.Duration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing duration %q: %v\n", cfg.Duration, err)
		os.Exit(1)
	}
	if cfg.PayloadSize <= 0 {
		cfg.PayloadSize = 256
	}

	report := FullReport{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  collectSystemInfo(),
	}

	payload := make([]byte, cfg.PayloadSize)
	for i := range payload {
		payload[i] = byte(fastrand.Uint32())
	}

	bar := progressbar.Default(int64(len(cfg.Scenarios)), "scenarios")
	for _, sc := range cfg.Scenarios {
		qCap := sc.Capacity
		if qCap == 0 {
			qCap = cfg.Capacity
		}

		result, err := runScenario(sc, qCap, window, cfg.Counters, payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scenario %dp/%dc: %v\n", sc.Producers, sc.Consumers, err)
			os.Exit(1)
		}
		report.Benchmarks = append(report.Benchmarks, result)
		bar.Add(1)
	}

	if err := appendReport(*outFile, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	printSummary(report)
	fmt.Printf("Report appended to %s\n", *outFile)
}

func runScenario(sc Scenario, capacity int, window time.Duration, counters bool, payload []byte) (BenchmarkResult, error) {
	if sc.Producers <= 0 || sc.Consumers <= 0 {
		return BenchmarkResult{}, errors.New("producers and consumers must be positive")
	}

	b := pktq.New(capacity)
	if counters {
		b.Counters()
	}
	q, err := pktq.Build[pktq.Packet](b)
	if err != nil {
		return BenchmarkResult{}, err
	}

	res := bench.RunTimed(q, bench.Config{
		NumProducers: sc.Producers,
		NumConsumers: sc.Consumers,
	}, window, func(i int) pktq.Packet {
		return pktq.Packet{
			Data:     payload,
			Priority: pktq.Priority(fastrand.Uint32n(4)),
			ID:       uint64(i),
		}
	})

	out := BenchmarkResult{
		NumProducers:        sc.Producers,
		NumConsumers:        sc.Consumers,
		Capacity:            q.Cap(),
		NumMessages:         res.Produced,
		NumMessagesConsumed: res.Consumed,
		TestDuration:        window.String(),
		ActualElapsed:       res.Elapsed.String(),
		Throughput:          res.Throughput(),
		Timestamp:           time.Now().Unix(),
		GoVersion:           runtime.Version(),
	}
	if counters {
		out.ContentionEvents = q.Stats().ContentionEvents
	}
	return out, nil
}

func collectSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU: runtime.NumCPU(),
		GOARCH: runtime.GOARCH,
	}
	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
		info.CPUSpeedMHz = cpus[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// appendReport adds one session to the JSON array in path, creating
// the file if needed.
func appendReport(path string, report FullReport) error {
	var sessions []FullReport
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &sessions); err != nil {
			return fmt.Errorf("existing report %q is not valid: %w", path, err)
		}
	}
	sessions = append(sessions, report)

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(report FullReport) {
	fmt.Printf("\n%-10s %-10s %-10s %-16s\n", "producers", "consumers", "capacity", "msgs/sec")
	for _, b := range report.Benchmarks {
		fmt.Printf("%-10d %-10d %-10d %-16.0f\n",
			b.NumProducers, b.NumConsumers, b.Capacity, b.Throughput)
	}
}

func parseCounts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("empty count list")
	}
	return out, nil
}
